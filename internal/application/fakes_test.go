package application

import (
	"context"
	"sync"
	"time"

	"eduplan/internal/eduplan"
	"eduplan/internal/models"
	"eduplan/internal/repository"
)

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

type fakeSheets struct {
	values       [][]interface{}
	err          error
	gotRange     string
	shareWith    []string
	shareRole    string
	created      []string
	updatedRange string
	updated      [][]interface{}
	public       bool
}

func (f *fakeSheets) GetValues(_ context.Context, _, rangeStr string) ([][]interface{}, error) {
	f.gotRange = rangeStr
	return f.values, f.err
}

func (f *fakeSheets) UpdateValues(_ context.Context, _, rangeStr string, values [][]interface{}) error {
	f.updatedRange = rangeStr
	f.updated = values
	return nil
}

func (f *fakeSheets) CreateSpreadsheet(_ context.Context, title, tabName string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.created = append(f.created, title+"/"+tabName)
	return "new-sheet", "https://docs.google.com/spreadsheets/d/new-sheet/edit", nil
}

func (f *fakeSheets) AddPermission(_ context.Context, _, email, role string) error {
	f.shareWith = append(f.shareWith, email)
	f.shareRole = role
	return f.err
}

func (f *fakeSheets) MakePublic(context.Context, string) error {
	f.public = true
	return nil
}

type fakeWebApp struct {
	records []map[string]string
	saved   []map[string]string
	id      string
	err     error
}

func (f *fakeWebApp) ListPlans(context.Context) ([]map[string]string, error) {
	return f.records, f.err
}

func (f *fakeWebApp) SavePlan(_ context.Context, plan map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, plan)
	return f.id, nil
}

type fakeRepo struct {
	mu         sync.Mutex
	replaced   []models.PlanSet
	replaceErr error
	runs       []models.SyncRun
	stored     []models.Plan
	lastRun    *models.SyncRun
}

func (f *fakeRepo) ReplaceAll(_ context.Context, set models.PlanSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, set)
	return nil
}

func (f *fakeRepo) GetAll(context.Context, string, string) ([]models.Plan, error) {
	return f.stored, nil
}

func (f *fakeRepo) RecordSyncRun(_ context.Context, run models.SyncRun) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return len(f.runs), nil
}

func (f *fakeRepo) LastSyncRun(context.Context, string, string) (*models.SyncRun, error) {
	if f.lastRun == nil {
		return nil, repository.ErrNoSyncRun
	}
	return f.lastRun, nil
}

var fixedNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func testSettings() eduplan.Settings {
	return eduplan.New("sheet-1", "https://script.google.com/macros/s/abc/exec", "Plans")
}

func sheetValues() [][]interface{} {
	return [][]interface{}{
		{"id", "Title", "Subject", "Date"},
		{"p1", "Fractions", "Math", "2026-10-01"},
		{"", "Poetry", "English"},
		{},
		{"p3", "Cells", "Biology", "2026-10-03"},
	}
}

func newTestService(deps Deps) *PlanServiceImpl {
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.Settings == (eduplan.Settings{}) {
		deps.Settings = testSettings()
	}
	s := NewPlanServiceImpl(deps)
	s.now = func() time.Time { return fixedNow }
	return s
}
