package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *GoogleSheetsClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewGoogleSheetsClient(context.Background(), Options{
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(srv.URL + "/"),
			option.WithoutAuthentication(),
			option.WithHTTPClient(srv.Client()),
		},
	})
	require.NoError(t, err)
	return c
}

func TestOptions_RequireCredentials(t *testing.T) {
	_, err := Options{}.clientOptions()
	assert.ErrorIs(t, err, ErrNoCredentials)

	opts, err := Options{APIKey: "key"}.clientOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	opts, err = Options{CredentialsFile: "creds.json", APIKey: "key"}.clientOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestGetValues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-1/values/"), r.URL.Path)
		assert.Contains(t, r.URL.Path, "Plans")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Plans!A1:Z3","majorDimension":"ROWS","values":[["id","Title"],["p1","Fractions"]]}`))
	})

	values, err := c.GetValues(context.Background(), "sheet-1", "'Plans'!A1:Z")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "Title", values[0][1])
	assert.Equal(t, "Fractions", values[1][1])
}

func TestGetValues_Error(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))
	})

	_, err := c.GetValues(context.Background(), "missing", "'Plans'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get values")
}

func TestCreateSpreadsheet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v4/spreadsheets"), r.URL.Path)

		var body struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
			Sheets []struct {
				Properties struct {
					Title string `json:"title"`
				} `json:"properties"`
			} `json:"sheets"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "EduPlan", body.Properties.Title)
		require.Len(t, body.Sheets, 1)
		assert.Equal(t, "Plans", body.Sheets[0].Properties.Title)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"new-1","spreadsheetUrl":"https://docs.google.com/spreadsheets/d/new-1/edit"}`))
	})

	id, url, err := c.CreateSpreadsheet(context.Background(), "EduPlan", "Plans")
	require.NoError(t, err)
	assert.Equal(t, "new-1", id)
	assert.Contains(t, url, "new-1")
}

func TestAddPermission(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "files/sheet-1/permissions")

		var perm map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&perm))
		assert.Equal(t, "user", perm["type"])
		assert.Equal(t, "writer", perm["role"])
		assert.Equal(t, "teacher@example.com", perm["emailAddress"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"perm-1"}`))
	})

	err := c.AddPermission(context.Background(), "sheet-1", "teacher@example.com", "writer")
	assert.NoError(t, err)
}
