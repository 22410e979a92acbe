package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eduplan/internal/eduplan"
	"eduplan/internal/models"
	"eduplan/internal/repository"
	"eduplan/pkg/sheets"
)

var (
	ErrPlanNotFound        = errors.New("plan not found")
	ErrEmptyPlan           = errors.New("plan has no fields")
	ErrSheetsNotConfigured = errors.New("google sheets access is not configured")
	ErrWebAppNotConfigured = errors.New("web app is not configured")
	ErrMirrorNotConfigured = errors.New("plan mirror database is not configured")
	ErrNoPlanSource        = errors.New("neither google sheets nor the web app is configured")
)

type PlanServiceImpl struct {
	settings eduplan.Settings
	sheets   sheets.Client
	webApp   WebApp
	repo     repository.Plan
	cache    *repository.PlanCache
	logger   Logger
	now      func() time.Time
}

func NewPlanServiceImpl(deps Deps) *PlanServiceImpl {
	cache := deps.Cache
	if cache == nil {
		cache = repository.NewPlanCache()
	}
	return &PlanServiceImpl{
		settings: deps.Settings,
		sheets:   deps.Sheets,
		webApp:   deps.WebApp,
		repo:     deps.Repo,
		cache:    cache,
		logger:   deps.Logger,
		now:      time.Now,
	}
}

// ListPlans reads the configured tab. When the read fails it falls back to
// the last cached read, then to the database mirror.
func (s *PlanServiceImpl) ListPlans(ctx context.Context) (models.PlanSet, error) {
	set, err := s.fetch(ctx)
	if err == nil {
		s.cache.Set(set)
		return set, nil
	}

	if cached, ok := s.cache.Get(s.settings.SheetID(), s.settings.SheetTabName()); ok {
		s.logger.Warn("serving cached plans", "error", err.Error(), "fetched_at", cached.FetchedAt)
		return cached, nil
	}

	if mirrored, mErr := s.fromMirror(ctx); mErr == nil {
		s.logger.Warn("serving mirrored plans", "error", err.Error(), "fetched_at", mirrored.FetchedAt)
		return mirrored, nil
	}

	return models.PlanSet{}, err
}

func (s *PlanServiceImpl) GetPlan(ctx context.Context, id string) (models.Plan, error) {
	set, err := s.ListPlans(ctx)
	if err != nil {
		return models.Plan{}, err
	}
	for _, p := range set.Plans {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
}

// SubmitPlan sends a plan to the web app, which owns writes to the sheet.
func (s *PlanServiceImpl) SubmitPlan(ctx context.Context, fields map[string]string) (string, error) {
	if s.webApp == nil {
		return "", ErrWebAppNotConfigured
	}

	clean := make(map[string]string, len(fields))
	for k, v := range fields {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		clean[k] = strings.TrimSpace(v)
	}
	if len(clean) == 0 {
		return "", ErrEmptyPlan
	}

	id, err := s.webApp.SavePlan(ctx, clean)
	if err != nil {
		return "", fmt.Errorf("failed to submit plan: %w", err)
	}

	s.cache.Delete(s.settings.SheetID(), s.settings.SheetTabName())
	s.logger.Info("plan submitted", "id", id, "tab", s.settings.SheetTabName())
	return id, nil
}

// MirrorPlans copies the current tab into the database and records the run.
// It never serves stale data: a failed read is recorded and returned.
func (s *PlanServiceImpl) MirrorPlans(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, ErrMirrorNotConfigured
	}

	run := models.SyncRun{
		SheetID:   s.settings.SheetID(),
		TabName:   s.settings.SheetTabName(),
		StartedAt: s.now(),
	}

	set, err := s.fetch(ctx)
	if err == nil {
		err = s.repo.ReplaceAll(ctx, set)
	}

	run.FinishedAt = s.now()
	if err != nil {
		run.Error = err.Error()
		if _, rErr := s.repo.RecordSyncRun(ctx, run); rErr != nil {
			s.logger.Error("failed to record sync run", "error", rErr.Error())
		}
		return 0, fmt.Errorf("failed to mirror plans: %w", err)
	}

	s.cache.Set(set)
	run.Headers = set.Headers
	run.PlanCount = len(set.Plans)
	if _, err := s.repo.RecordSyncRun(ctx, run); err != nil {
		return 0, err
	}

	s.logger.Info("plans mirrored", "count", run.PlanCount, "tab", run.TabName,
		"duration", run.FinishedAt.Sub(run.StartedAt).String())
	return run.PlanCount, nil
}

func (s *PlanServiceImpl) ShareSheet(ctx context.Context, email string) error {
	if s.sheets == nil {
		return ErrSheetsNotConfigured
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("share email is empty")
	}

	if err := s.sheets.AddPermission(ctx, s.settings.SheetID(), email, sheetsOwnerRole); err != nil {
		return fmt.Errorf("failed to share spreadsheet: %w", err)
	}
	s.logger.Info("spreadsheet shared", "email", email, "url", s.settings.SheetURL())
	return nil
}

// fetch reads the tab from the sheets API when credentials are configured,
// otherwise from the web app.
func (s *PlanServiceImpl) fetch(ctx context.Context) (models.PlanSet, error) {
	set := models.PlanSet{
		SheetID: s.settings.SheetID(),
		TabName: s.settings.SheetTabName(),
	}

	switch {
	case s.sheets != nil:
		values, err := s.sheets.GetValues(ctx, s.settings.SheetID(), s.settings.TabRange(""))
		if err != nil {
			return models.PlanSet{}, fmt.Errorf("failed to read plans from sheet: %w", err)
		}
		set.Headers, set.Plans = parsePlans(values)
	case s.webApp != nil:
		records, err := s.webApp.ListPlans(ctx)
		if err != nil {
			return models.PlanSet{}, fmt.Errorf("failed to read plans from web app: %w", err)
		}
		set.Headers, set.Plans = plansFromRecords(records)
	default:
		return models.PlanSet{}, ErrNoPlanSource
	}

	set.FetchedAt = s.now()
	s.logger.Debug("plans fetched", "count", len(set.Plans), "tab", set.TabName)
	return set, nil
}

func (s *PlanServiceImpl) fromMirror(ctx context.Context) (models.PlanSet, error) {
	if s.repo == nil {
		return models.PlanSet{}, ErrMirrorNotConfigured
	}

	run, err := s.repo.LastSyncRun(ctx, s.settings.SheetID(), s.settings.SheetTabName())
	if err != nil {
		return models.PlanSet{}, err
	}
	plans, err := s.repo.GetAll(ctx, s.settings.SheetID(), s.settings.SheetTabName())
	if err != nil {
		return models.PlanSet{}, err
	}

	return models.PlanSet{
		SheetID:   run.SheetID,
		TabName:   run.TabName,
		Headers:   run.Headers,
		Plans:     plans,
		FetchedAt: run.FinishedAt,
	}, nil
}
