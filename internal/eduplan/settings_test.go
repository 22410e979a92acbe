package eduplan

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, "1bHkeTL1vZe-mvs6niC0pE5as028wlFMoOMIJmq3NPrg", s.SheetID())
	assert.True(t, strings.HasPrefix(s.WebAppURL(), "https://script.google.com/macros/s/"))
	assert.True(t, strings.HasSuffix(s.WebAppURL(), "/exec"))
	assert.Equal(t, "Plans", s.SheetTabName())
	assert.NoError(t, s.Validate())
}

func TestFields_ExactlyThreeKeys(t *testing.T) {
	fields := Default().Fields()

	require.Len(t, fields, 3)
	for _, key := range []string{KeySheetID, KeyWebAppURL, KeySheetTabName} {
		v, ok := fields[key]
		assert.True(t, ok, "missing %s", key)
		assert.NotEmpty(t, v, "empty %s", key)
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	s := Default()
	fields := s.Fields()
	fields[KeySheetTabName] = "Other"

	assert.Equal(t, "Plans", s.SheetTabName())
	assert.Equal(t, "Plans", s.Fields()[KeySheetTabName])
}

func TestReadsAreIdempotent(t *testing.T) {
	s := New("sheet", "https://example.com/exec", "Plans")

	assert.Equal(t, s.SheetTabName(), s.SheetTabName())
	assert.Equal(t, s.SheetID(), s.SheetID())
	assert.Equal(t, s.WebAppURL(), s.WebAppURL())
}

func TestConcurrentReaders(t *testing.T) {
	s := Default()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Plans", s.SheetTabName())
		}()
	}
	wg.Wait()
}

func TestEmptyTabName_ReturnedAsIs(t *testing.T) {
	s := New(DefaultSheetID, DefaultWebAppURL, "")

	assert.Equal(t, "", s.SheetTabName())

	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyField)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KeySheetTabName, fe.Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr []error
	}{
		{
			name: "valid",
			s:    New("abc123", "https://script.google.com/macros/s/xyz/exec", "Plans"),
		},
		{
			name:    "truncated template url",
			s:       New("abc123", "https://script.google.com/macros/s/AKfycbx.../exec", "Plans"),
			wantErr: []error{ErrPlaceholder},
		},
		{
			name:    "placeholder sheet id",
			s:       New("YOUR_SHEET_ID", "https://example.com/exec", "Plans"),
			wantErr: []error{ErrPlaceholder},
		},
		{
			name:    "angle bracket placeholder",
			s:       New("<sheet id>", "https://example.com/exec", "Plans"),
			wantErr: []error{ErrPlaceholder},
		},
		{
			name:    "relative url",
			s:       New("abc123", "/macros/s/xyz/exec", "Plans"),
			wantErr: []error{ErrInvalidURL},
		},
		{
			name:    "ftp url",
			s:       New("abc123", "ftp://example.com/exec", "Plans"),
			wantErr: []error{ErrInvalidURL},
		},
		{
			name:    "everything missing",
			s:       New("", " ", ""),
			wantErr: []error{ErrEmptyField},
		},
		{
			name:    "mixed problems",
			s:       New("PASTE_HERE", "not a url", ""),
			wantErr: []error{ErrPlaceholder, ErrInvalidURL, ErrEmptyField},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := New("", "", "").Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, KeySheetID)
	assert.Contains(t, msg, KeyWebAppURL)
	assert.Contains(t, msg, KeySheetTabName)
}

func TestTabRange(t *testing.T) {
	assert.Equal(t, "'Plans'!A1:Z", Default().TabRange("A1:Z"))
	assert.Equal(t, "'Plans'", Default().TabRange(""))
	assert.Equal(t, "'Teacher''s plans'!A1", New("id", "", "Teacher's plans").TabRange("A1"))
}

func TestSheetURL(t *testing.T) {
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc", New("abc", "", "").SheetURL())
}

func TestRenderJS(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().RenderJS(&buf))

	out := buf.String()
	require.Contains(t, out, "window.EduPlanConfig = {")
	require.True(t, strings.HasSuffix(out, "};\n"))

	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out[start:end+1]), &got))
	assert.Equal(t, Default().Fields(), got)
}

func TestRenderJS_EscapesValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(`a"b`, "https://example.com/exec", "Plans").RenderJS(&buf))

	assert.Contains(t, buf.String(), `"SHEET_ID": "a\"b"`)
}
