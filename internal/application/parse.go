package application

import (
	"fmt"
	"sort"
	"strings"

	"eduplan/internal/models"

	"github.com/xuri/excelize/v2"
)

// parsePlans turns raw tab values into plans. values[0] is the header row.
// Blank rows are skipped, short rows are padded with "", and a row keeps its
// id column value as ID unless it is empty or already taken.
func parsePlans(values [][]interface{}) ([]string, []models.Plan) {
	if len(values) == 0 {
		return nil, nil
	}

	headers := make([]string, len(values[0]))
	taken := make(map[string]bool, len(values[0]))
	idCol := -1
	for i, cell := range values[0] {
		h := headerName(taken, strings.TrimSpace(cellString(cell)), i)
		headers[i] = h
		if idCol < 0 && strings.EqualFold(h, idHeader) {
			idCol = i
		}
	}

	seen := make(map[string]bool)
	var plans []models.Plan
	for i, row := range values[1:] {
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 2

		fields := make(map[string]string, len(headers))
		for col, h := range headers {
			v := ""
			if col < len(row) {
				v = strings.TrimSpace(cellString(row[col]))
			}
			fields[h] = v
		}

		id := ""
		if idCol >= 0 {
			id = fields[headers[idCol]]
		}
		plans = append(plans, models.Plan{ID: claimID(seen, id, rowNum), Row: rowNum, Fields: fields})
	}
	return headers, plans
}

// plansFromRecords builds plans from header-keyed records such as the web app
// returns. Column order is unknown there, so headers are sorted with id first.
func plansFromRecords(records []map[string]string) ([]string, []models.Plan) {
	keys := make(map[string]bool)
	for _, r := range records {
		for k := range r {
			keys[k] = true
		}
	}
	headers := make([]string, 0, len(keys))
	for k := range keys {
		headers = append(headers, k)
	}
	sort.Slice(headers, func(i, j int) bool {
		iID, jID := strings.EqualFold(headers[i], idHeader), strings.EqualFold(headers[j], idHeader)
		if iID != jID {
			return iID
		}
		return headers[i] < headers[j]
	})

	seen := make(map[string]bool)
	plans := make([]models.Plan, 0, len(records))
	for i, r := range records {
		p := models.Plan{Row: i + 2, Fields: make(map[string]string, len(headers))}
		for _, h := range headers {
			p.Fields[h] = r[h]
		}
		p.ID = claimID(seen, strings.TrimSpace(p.Get(idHeader)), p.Row)
		plans = append(plans, p)
	}
	return headers, plans
}

func rowID(row int) string {
	return fmt.Sprintf("row-%d", row)
}

// claimID returns id, or a row-based id when id is empty or already used,
// and marks the result as used. An explicit id may already hold "row-N", so
// the fallback gets a numeric suffix until it is free.
func claimID(seen map[string]bool, id string, row int) string {
	if id == "" || seen[id] {
		base := rowID(row)
		id = base
		for n := 2; seen[id]; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
	}
	seen[id] = true
	return id
}

// headerName keys column col. A blank or repeated header falls back to the
// column letter, suffixed when a real header already uses that letter.
func headerName(taken map[string]bool, h string, col int) string {
	name := h
	if name == "" || taken[name] {
		letter, _ := excelize.ColumnNumberToName(col + 1)
		name = letter
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", letter, n)
		}
	}
	taken[name] = true
	return name
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func isBlankRow(row []interface{}) bool {
	for _, c := range row {
		if strings.TrimSpace(cellString(c)) != "" {
			return false
		}
	}
	return true
}
