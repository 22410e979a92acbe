package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eduplan/internal/models"

	"github.com/lib/pq"
)

// ErrNoSyncRun is returned by LastSyncRun before the tab was ever mirrored.
var ErrNoSyncRun = errors.New("no sync run recorded")

type PlanPostgres struct {
	db *sql.DB
}

func NewPlanPostgres(db *sql.DB) *PlanPostgres {
	return &PlanPostgres{db: db}
}

// ReplaceAll swaps the stored rows of one tab for set.Plans in a single transaction.
func (r *PlanPostgres) ReplaceAll(ctx context.Context, set models.PlanSet) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, "DELETE FROM plans WHERE sheet_id = $1 AND tab_name = $2", set.SheetID, set.TabName)
	if err != nil {
		return fmt.Errorf("failed to clear plans: %w", err)
	}

	query := `INSERT INTO plans (sheet_id, tab_name, plan_id, row_number, fields, synced_at)
              VALUES ($1, $2, $3, $4, $5, $6)`
	for _, p := range set.Plans {
		fields, mErr := json.Marshal(p.Fields)
		if mErr != nil {
			err = fmt.Errorf("failed to encode plan %s: %w", p.ID, mErr)
			return err
		}
		_, err = tx.ExecContext(ctx, query, set.SheetID, set.TabName, p.ID, p.Row, fields, set.FetchedAt)
		if err != nil {
			return fmt.Errorf("failed to insert plan %s: %w", p.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PlanPostgres) GetAll(ctx context.Context, sheetID, tabName string) ([]models.Plan, error) {
	query := `
		SELECT plan_id, row_number, fields
		FROM plans
		WHERE sheet_id = $1 AND tab_name = $2
		ORDER BY row_number
	`
	rows, err := r.db.QueryContext(ctx, query, sheetID, tabName)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var p models.Plan
		var raw []byte
		if err := rows.Scan(&p.ID, &p.Row, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		if err := json.Unmarshal(raw, &p.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode plan %s: %w", p.ID, err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plans: %w", err)
	}
	return plans, nil
}

func (r *PlanPostgres) RecordSyncRun(ctx context.Context, run models.SyncRun) (int, error) {
	// headers is NOT NULL; pq.Array sends NULL for a nil slice
	headers := run.Headers
	if headers == nil {
		headers = []string{}
	}

	var id int
	query := `INSERT INTO sync_runs (sheet_id, tab_name, headers, plan_count, started_at, finished_at, error)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		run.SheetID, run.TabName, pq.Array(headers), run.PlanCount, run.StartedAt, run.FinishedAt, run.Error,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to record sync run: %w", err)
	}
	return id, nil
}

// LastSyncRun returns the newest successful run for the tab.
func (r *PlanPostgres) LastSyncRun(ctx context.Context, sheetID, tabName string) (*models.SyncRun, error) {
	query := `
		SELECT id, sheet_id, tab_name, headers, plan_count, started_at, finished_at, error
		FROM sync_runs
		WHERE sheet_id = $1 AND tab_name = $2 AND error = ''
		ORDER BY finished_at DESC
		LIMIT 1
	`
	var run models.SyncRun
	err := r.db.QueryRowContext(ctx, query, sheetID, tabName).Scan(
		&run.ID, &run.SheetID, &run.TabName, pq.Array(&run.Headers),
		&run.PlanCount, &run.StartedAt, &run.FinishedAt, &run.Error,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSyncRun
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync run: %w", err)
	}
	return &run, nil
}
