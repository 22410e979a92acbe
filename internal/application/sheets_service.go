package application

import (
	"context"
	"fmt"
)

const defaultSheetTitle = "EduPlan"

// defaultPlanHeaders is the header row written to a freshly provisioned tab.
var defaultPlanHeaders = []string{"id", "Title", "Subject", "Grade", "Date", "Objectives", "Notes"}

type ProvisionedSheet struct {
	SpreadsheetID  string
	SpreadsheetURL string
}

// ProvisionSheet creates a new spreadsheet laid out for EduPlan: one tab named
// after the configured tab, a header row, writer access for ownerEmail and
// public read access so the page can load it.
func (s *PlanServiceImpl) ProvisionSheet(ctx context.Context, title, ownerEmail string) (ProvisionedSheet, error) {
	if s.sheets == nil {
		return ProvisionedSheet{}, ErrSheetsNotConfigured
	}
	if title == "" {
		title = defaultSheetTitle
	}

	id, url, err := s.sheets.CreateSpreadsheet(ctx, title, s.settings.SheetTabName())
	if err != nil {
		return ProvisionedSheet{}, fmt.Errorf("failed to create spreadsheet: %w", err)
	}

	header := make([]interface{}, len(defaultPlanHeaders))
	for i, h := range defaultPlanHeaders {
		header[i] = h
	}
	if err := s.sheets.UpdateValues(ctx, id, s.settings.TabRange("A1"), [][]interface{}{header}); err != nil {
		return ProvisionedSheet{}, fmt.Errorf("failed to write header row: %w", err)
	}

	if ownerEmail != "" {
		if err := s.sheets.AddPermission(ctx, id, ownerEmail, sheetsOwnerRole); err != nil {
			return ProvisionedSheet{}, fmt.Errorf("failed to add owner permission: %w", err)
		}
	}

	if err := s.sheets.MakePublic(ctx, id); err != nil {
		return ProvisionedSheet{}, fmt.Errorf("failed to make spreadsheet public: %w", err)
	}

	s.logger.Info("spreadsheet provisioned", "id", id, "tab", s.settings.SheetTabName())
	return ProvisionedSheet{SpreadsheetID: id, SpreadsheetURL: url}, nil
}
