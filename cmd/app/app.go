package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"eduplan/internal/application"
	"eduplan/internal/eduplan"
	"eduplan/internal/repository"
	"eduplan/pkg/config"
	"eduplan/pkg/logger"
	service "eduplan/pkg/services"
	"eduplan/pkg/sheets"
	"eduplan/pkg/webapp"
)

type app struct {
	cfg      config.Config
	settings eduplan.Settings
	log      *logger.Logger
	out      io.Writer
}

// newApp builds the command runner. Results go to out and logs to logOut.
func newApp(cfg config.Config, command string, out, logOut io.Writer) *app {
	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel, Output: logOut})
	return &app{
		cfg:      cfg,
		settings: cfg.Settings(),
		log:      log.With("command", command, "tab", cfg.EduPlan.SheetTabName),
		out:      out,
	}
}

func (a *app) showConfig() error {
	fmt.Fprintf(a.out, "%s=%s\n", eduplan.KeySheetID, a.settings.SheetID())
	fmt.Fprintf(a.out, "%s=%s\n", eduplan.KeyWebAppURL, a.settings.WebAppURL())
	fmt.Fprintf(a.out, "%s=%s\n", eduplan.KeySheetTabName, a.settings.SheetTabName())
	return nil
}

func (a *app) validateConfig() error {
	if err := a.settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	fmt.Fprintln(a.out, "configuration OK")
	return nil
}

func (a *app) renderJS(path string) error {
	if err := a.settings.Validate(); err != nil {
		a.log.Warn("rendering config with invalid values", "error", err.Error())
	}

	if path == "" {
		return a.settings.RenderJS(a.out)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := a.settings.RenderJS(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// requireValid stops any command that talks to Google or the database while
// the settings are still placeholders.
func (a *app) requireValid() error {
	if err := a.settings.Validate(); err != nil {
		return fmt.Errorf("refusing to start with invalid configuration:\n%w", err)
	}
	return nil
}

func (a *app) listPlans(ctx context.Context) error {
	svc, closeFn, err := a.services(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	set, err := svc.PlanService.ListPlans(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ROW\tID\t%s\n", strings.Join(set.Headers, "\t"))
	for _, p := range set.Plans {
		cells := make([]string, len(set.Headers))
		for i, h := range set.Headers {
			cells[i] = p.Fields[h]
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", p.Row, p.ID, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func (a *app) getPlan(ctx context.Context, id string) error {
	svc, closeFn, err := a.services(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	p, err := svc.PlanService.GetPlan(ctx, id)
	if err != nil {
		return err
	}

	headers := make([]string, 0, len(p.Fields))
	for h := range p.Fields {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	fmt.Fprintf(a.out, "id: %s\nrow: %d\n", p.ID, p.Row)
	for _, h := range headers {
		fmt.Fprintf(a.out, "%s: %s\n", h, p.Fields[h])
	}
	return nil
}

func (a *app) exportPlans(ctx context.Context, path string) error {
	svc, closeFn, err := a.services(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := svc.PlanService.ExportExcel(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.log.Info("plans exported", "path", path, "bytes", len(data))
	return nil
}

func (a *app) submitPlan(ctx context.Context, fields map[string]string) error {
	svc, closeFn, err := a.services(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	id, err := svc.PlanService.SubmitPlan(ctx, fields)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)
	return nil
}

func (a *app) sharePlans(ctx context.Context, email string) error {
	if email == "" {
		email = a.cfg.Google.OwnerEmail
	}

	svc, closeFn, err := a.services(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := svc.PlanService.ShareSheet(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.settings.SheetURL())
	return nil
}

func (a *app) provisionSheet(ctx context.Context, title string) error {
	svc, closeFn, err := a.services(ctx, false)
	if err != nil {
		return err
	}
	defer closeFn()

	sheet, err := svc.PlanService.ProvisionSheet(ctx, title, a.cfg.Google.OwnerEmail)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s=%s\n# %s\n", eduplan.KeySheetID, sheet.SpreadsheetID, sheet.SpreadsheetURL)
	return nil
}

func (a *app) mirrorPlans(ctx context.Context, once bool) error {
	svc, closeFn, err := a.services(ctx, true)
	if err != nil {
		return err
	}
	defer closeFn()

	if once {
		n, err := svc.PlanService.MirrorPlans(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "mirrored %d plans\n", n)
		return nil
	}

	manager := service.NewManager(a.log)
	manager.AddService(application.NewMirrorWorker(svc.PlanService, a.cfg.Mirror.Interval, a.log))
	return manager.Run(ctx)
}

// services wires the plan service. With needRepo the database must be
// reachable; otherwise it is used as a read fallback when configured.
func (a *app) services(ctx context.Context, needRepo bool) (*application.Service, func(), error) {
	deps := application.Deps{
		Settings: a.settings,
		Cache:    repository.NewPlanCache(),
		Logger:   a.log,
	}
	closeFn := func() {}

	if a.hasGoogleCredentials() {
		client, err := sheets.NewGoogleSheetsClient(ctx, sheets.Options{
			CredentialsFile: a.cfg.Google.CredentialsFile,
			CredentialsJSON: a.cfg.Google.CredentialsJSON,
			APIKey:          a.cfg.Google.APIKey,
		})
		if err != nil {
			return nil, nil, err
		}
		deps.Sheets = client
	}

	deps.WebApp = webapp.NewClient(a.settings.WebAppURL(), a.settings.SheetTabName(), a.cfg.HTTPTimeout)

	if needRepo || a.cfg.Repo.DBName != "" {
		db, err := a.openDB(ctx)
		switch {
		case err == nil:
			repos := repository.NewRepository(db)
			deps.Repo = repos.Plan
			closeFn = func() { repos.Close() }
		case needRepo:
			return nil, nil, err
		default:
			a.log.Warn("plan mirror unavailable", "error", err.Error())
		}
	}

	return application.NewService(deps), closeFn, nil
}

func (a *app) hasGoogleCredentials() bool {
	g := a.cfg.Google
	return g.CredentialsFile != "" || g.CredentialsJSON != "" || g.APIKey != ""
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := repository.NewPostgresDB(ctx, &a.cfg.Repo)
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}

	a.log.Info("Running migrations...")
	version, err := repository.RunMigrations(db, migrationFS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	a.log.Info("Migrations applied successfully", "version", version)
	return db, nil
}
