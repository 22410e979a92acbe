package application

import (
	"context"

	"eduplan/internal/eduplan"
	"eduplan/internal/models"
	"eduplan/internal/repository"
	"eduplan/pkg/sheets"
)

type Logger interface {
	Error(msg string, v ...interface{})
	Warn(msg string, v ...interface{})
	Info(msg string, v ...interface{})
	Debug(msg string, v ...interface{})
}

// WebApp is the part of the Apps Script client the services use.
type WebApp interface {
	ListPlans(ctx context.Context) ([]map[string]string, error)
	SavePlan(ctx context.Context, plan map[string]string) (string, error)
}

type PlanService interface {
	ListPlans(ctx context.Context) (models.PlanSet, error)
	GetPlan(ctx context.Context, id string) (models.Plan, error)
	SubmitPlan(ctx context.Context, fields map[string]string) (string, error)
	ExportExcel(ctx context.Context) ([]byte, error)
	MirrorPlans(ctx context.Context) (int, error)
	ShareSheet(ctx context.Context, email string) error
	ProvisionSheet(ctx context.Context, title, ownerEmail string) (ProvisionedSheet, error)
}

type Deps struct {
	Settings eduplan.Settings
	Sheets   sheets.Client
	WebApp   WebApp
	Repo     repository.Plan
	Cache    *repository.PlanCache
	Logger   Logger
}

type Service struct {
	PlanService PlanService
}

func NewService(deps Deps) *Service {
	return &Service{
		PlanService: NewPlanServiceImpl(deps),
	}
}
