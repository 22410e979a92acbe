package eduplan

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyField  = errors.New("value is empty")
	ErrPlaceholder = errors.New("value still holds placeholder text")
	ErrInvalidURL  = errors.New("value is not an absolute http(s) url")
)

// placeholderMarkers are fragments left behind by the setup template.
var placeholderMarkers = []string{
	"YOUR_",
	"YOUR-",
	"PASTE",
	"REPLACE_ME",
	"CHANGEME",
	"...",
}

// FieldError ties a validation failure to the field it was found on.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate reports every problem with the settings at once. Reading the
// fields is never affected; callers decide whether a failure stops them.
func (s Settings) Validate() error {
	var errs []error

	for _, f := range []struct {
		key   string
		value string
	}{
		{KeySheetID, s.sheetID},
		{KeyWebAppURL, s.webAppURL},
		{KeySheetTabName, s.sheetTabName},
	} {
		if err := checkValue(f.value); err != nil {
			errs = append(errs, &FieldError{Field: f.key, Err: err})
		}
	}

	if strings.TrimSpace(s.webAppURL) != "" && !isPlaceholder(s.webAppURL) {
		if err := checkURL(s.webAppURL); err != nil {
			errs = append(errs, &FieldError{Field: KeyWebAppURL, Err: err})
		}
	}

	return errors.Join(errs...)
}

func checkValue(v string) error {
	if strings.TrimSpace(v) == "" {
		return ErrEmptyField
	}
	if isPlaceholder(v) {
		return ErrPlaceholder
	}
	return nil
}

func isPlaceholder(v string) bool {
	upper := strings.ToUpper(v)
	for _, m := range placeholderMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return strings.Contains(v, "<") && strings.Contains(v, ">")
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
