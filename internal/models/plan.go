package models

import (
	"strings"
	"time"
)

type Plan struct {
	ID     string            `json:"id" db:"plan_id"`
	Row    int               `json:"row" db:"row_number"`
	Fields map[string]string `json:"fields" db:"fields"`
}

// Get looks a field up by header, ignoring case and surrounding spaces.
func (p Plan) Get(header string) string {
	if v, ok := p.Fields[header]; ok {
		return v
	}
	want := strings.TrimSpace(header)
	for k, v := range p.Fields {
		if strings.EqualFold(k, want) {
			return v
		}
	}
	return ""
}

// PlanSet is one read of a sheet tab. Headers keep the column order of the tab.
type PlanSet struct {
	SheetID   string    `json:"sheet_id"`
	TabName   string    `json:"tab_name"`
	Headers   []string  `json:"headers"`
	Plans     []Plan    `json:"plans"`
	FetchedAt time.Time `json:"fetched_at"`
}

type SyncRun struct {
	ID         int       `json:"id" db:"id"`
	SheetID    string    `json:"sheet_id" db:"sheet_id"`
	TabName    string    `json:"tab_name" db:"tab_name"`
	Headers    []string  `json:"headers" db:"headers"`
	PlanCount  int       `json:"plan_count" db:"plan_count"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	Error      string    `json:"error,omitempty" db:"error"`
}
