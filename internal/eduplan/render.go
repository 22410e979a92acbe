package eduplan

import (
	"encoding/json"
	"fmt"
	"io"
)

const jsGlobalName = "window.EduPlanConfig"

// jsConfig keeps the key order of the snippet stable.
type jsConfig struct {
	SheetID      string `json:"SHEET_ID"`
	WebAppURL    string `json:"WEB_APP_URL"`
	SheetTabName string `json:"SHEET_TAB_NAME"`
}

// RenderJS writes the config.js snippet the EduPlan page loads before its own
// scripts.
func (s Settings) RenderJS(w io.Writer) error {
	body, err := json.MarshalIndent(jsConfig{
		SheetID:      s.sheetID,
		WebAppURL:    s.webAppURL,
		SheetTabName: s.sheetTabName,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if _, err := fmt.Fprintf(w, "// Generated by eduplan config render-js. Edit the deployment config, not this file.\n%s = %s;\n", jsGlobalName, body); err != nil {
		return fmt.Errorf("failed to write config snippet: %w", err)
	}
	return nil
}
