// Package eduplan holds the deployment settings the EduPlan page needs to
// reach its spreadsheet and the Apps Script web app.
//
// A Settings value is built once at startup and handed to every component
// that talks to the sheet or the web app. It has no setters, so a single value
// can be shared between goroutines without locking.
package eduplan

import (
	"fmt"
	"strings"
)

const (
	KeySheetID      = "SHEET_ID"
	KeyWebAppURL    = "WEB_APP_URL"
	KeySheetTabName = "SHEET_TAB_NAME"
)

const (
	DefaultSheetID      = "1bHkeTL1vZe-mvs6niC0pE5as028wlFMoOMIJmq3NPrg"
	DefaultWebAppURL    = "https://script.google.com/macros/s/AKfycbxbTSdrG-fYlqJFD2AtLspF-W46JwWHiuC9Fb7WSITgIzFLwwk_wVCxP7g2e76VHk9O3g/exec"
	DefaultSheetTabName = "Plans"

	spreadsheetURLPrefix = "https://docs.google.com/spreadsheets/d/"
)

type Settings struct {
	sheetID      string
	webAppURL    string
	sheetTabName string
}

// New stores the values as given. Nothing is trimmed or checked here; see Validate.
func New(sheetID, webAppURL, sheetTabName string) Settings {
	return Settings{
		sheetID:      sheetID,
		webAppURL:    webAppURL,
		sheetTabName: sheetTabName,
	}
}

// Default returns the values of the current deployment.
func Default() Settings {
	return New(DefaultSheetID, DefaultWebAppURL, DefaultSheetTabName)
}

func (s Settings) SheetID() string {
	return s.sheetID
}

func (s Settings) WebAppURL() string {
	return s.webAppURL
}

func (s Settings) SheetTabName() string {
	return s.sheetTabName
}

// Fields returns a fresh map keyed by the front-end field names.
func (s Settings) Fields() map[string]string {
	return map[string]string{
		KeySheetID:      s.sheetID,
		KeyWebAppURL:    s.webAppURL,
		KeySheetTabName: s.sheetTabName,
	}
}

// SheetURL is the browser link to the spreadsheet.
func (s Settings) SheetURL() string {
	return spreadsheetURLPrefix + s.sheetID
}

// TabRange builds an A1 range scoped to the configured tab, e.g. 'Plans'!A1:Z.
// An empty a1 selects the whole tab.
func (s Settings) TabRange(a1 string) string {
	quoted := "'" + strings.ReplaceAll(s.sheetTabName, "'", "''") + "'"
	if a1 == "" {
		return quoted
	}
	return fmt.Sprintf("%s!%s", quoted, a1)
}

func (s Settings) String() string {
	return fmt.Sprintf("%s=%q %s=%q %s=%q",
		KeySheetID, s.sheetID, KeyWebAppURL, s.webAppURL, KeySheetTabName, s.sheetTabName)
}
