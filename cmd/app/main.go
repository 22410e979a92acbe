package main

import (
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"eduplan/pkg/config"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "eduplan:", err)
		cancel()
		os.Exit(1)
	}
}

type cli struct {
	app *kingpin.Application

	configFile   *string
	sheetID      *string
	webAppURL    *string
	sheetTabName *string
	logLevel     *string

	sheetIDSet, webAppURLSet, sheetTabNameSet bool

	configShow     *kingpin.CmdClause
	configValidate *kingpin.CmdClause
	configRender   *kingpin.CmdClause
	renderOut      *string

	plansList   *kingpin.CmdClause
	plansGet    *kingpin.CmdClause
	getID       *string
	plansExport *kingpin.CmdClause
	exportOut   *string
	plansSubmit *kingpin.CmdClause
	submitField *map[string]string
	plansShare  *kingpin.CmdClause
	shareEmail  *string

	plansProvision *kingpin.CmdClause
	provisionTitle *string

	mirror     *kingpin.CmdClause
	mirrorOnce *bool
}

func newCLI() *cli {
	c := &cli{app: kingpin.New("eduplan", "EduPlan lesson plans backed by a Google Sheet and an Apps Script web app")}
	c.app.HelpFlag.Short('h')

	c.configFile = c.app.Flag("config", "Path to YAML configuration file").Envar("EDUPLAN_CONFIG").String()
	c.sheetID = c.app.Flag("sheet-id", "Spreadsheet id (overrides SHEET_ID)").IsSetByUser(&c.sheetIDSet).String()
	c.webAppURL = c.app.Flag("web-app-url", "Deployed Apps Script /exec URL (overrides WEB_APP_URL)").IsSetByUser(&c.webAppURLSet).String()
	c.sheetTabName = c.app.Flag("tab", "Sheet tab holding the plans (overrides SHEET_TAB_NAME)").IsSetByUser(&c.sheetTabNameSet).String()
	c.logLevel = c.app.Flag("log-level", "debug, info, warn or error (overrides LOGGER_LEVEL)").String()

	cfgCmd := c.app.Command("config", "Inspect the deployment configuration")
	c.configShow = cfgCmd.Command("show", "Print SHEET_ID, WEB_APP_URL and SHEET_TAB_NAME").Default()
	c.configValidate = cfgCmd.Command("validate", "Fail when a value is empty, a placeholder or malformed")
	c.configRender = cfgCmd.Command("render-js", "Write the window.EduPlanConfig snippet for the page")
	c.renderOut = c.configRender.Flag("out", "Output file (default stdout)").Short('o').String()

	plansCmd := c.app.Command("plans", "Work with the plans tab")
	c.plansList = plansCmd.Command("list", "List plans").Default()
	c.plansGet = plansCmd.Command("get", "Show one plan")
	c.getID = c.plansGet.Arg("id", "Plan id (id column or row-N)").Required().String()
	c.plansExport = plansCmd.Command("export", "Export plans to an XLSX workbook")
	c.exportOut = c.plansExport.Flag("out", "Output file").Short('o').Default("plans.xlsx").String()
	c.plansSubmit = plansCmd.Command("submit", "Submit a plan through the web app")
	c.submitField = c.plansSubmit.Flag("field", "Plan field as header=value, repeatable").Short('f').Required().StringMap()
	c.plansShare = plansCmd.Command("share", "Grant writer access to the spreadsheet")
	c.shareEmail = c.plansShare.Flag("email", "Google account to share with (default GOOGLE_OWNER_EMAIL)").String()

	c.plansProvision = plansCmd.Command("provision", "Create a new spreadsheet laid out for EduPlan")
	c.provisionTitle = c.plansProvision.Flag("title", "Spreadsheet title").Default("EduPlan").String()

	c.mirror = c.app.Command("mirror", "Mirror the plans tab into Postgres")
	c.mirrorOnce = c.mirror.Flag("once", "Mirror once and exit").Bool()

	return c
}

func (c *cli) overrides() *config.CLIOverrides {
	o := &config.CLIOverrides{ConfigFile: *c.configFile, LogLevel: c.logLevel}
	if c.sheetIDSet {
		o.SheetID = c.sheetID
	}
	if c.webAppURLSet {
		o.WebAppURL = c.webAppURL
	}
	if c.sheetTabNameSet {
		o.SheetTabName = c.sheetTabName
	}
	return o
}

func run(ctx context.Context, args []string, out io.Writer) error {
	c := newCLI()
	c.app.UsageWriter(out)
	c.app.ErrorWriter(out)

	cmd, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.overrides())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a := newApp(cfg, cmd, out, os.Stderr)

	switch cmd {
	case c.configShow.FullCommand():
		return a.showConfig()
	case c.configValidate.FullCommand():
		return a.validateConfig()
	case c.configRender.FullCommand():
		return a.renderJS(*c.renderOut)
	case c.plansProvision.FullCommand():
		// a fresh deployment has no sheet to validate yet
		return a.provisionSheet(ctx, *c.provisionTitle)
	}

	if err := a.requireValid(); err != nil {
		return err
	}

	switch cmd {
	case c.plansList.FullCommand():
		return a.listPlans(ctx)
	case c.plansGet.FullCommand():
		return a.getPlan(ctx, *c.getID)
	case c.plansExport.FullCommand():
		return a.exportPlans(ctx, *c.exportOut)
	case c.plansSubmit.FullCommand():
		return a.submitPlan(ctx, *c.submitField)
	case c.plansShare.FullCommand():
		return a.sharePlans(ctx, *c.shareEmail)
	case c.mirror.FullCommand():
		return a.mirrorPlans(ctx, *c.mirrorOnce)
	}

	return fmt.Errorf("unknown command %q", cmd)
}
