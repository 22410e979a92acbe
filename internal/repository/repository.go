package repository

import (
	"context"
	"database/sql"

	"eduplan/internal/models"
)

type Plan interface {
	ReplaceAll(ctx context.Context, set models.PlanSet) error
	GetAll(ctx context.Context, sheetID, tabName string) ([]models.Plan, error)
	RecordSyncRun(ctx context.Context, run models.SyncRun) (int, error)
	LastSyncRun(ctx context.Context, sheetID, tabName string) (*models.SyncRun, error)
}

type Repository struct {
	Plan
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Plan: NewPlanPostgres(db),
		db:   db,
	}
}

func (r *Repository) Close() error {
	return r.db.Close()
}
