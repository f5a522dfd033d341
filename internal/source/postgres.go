package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/guildstats/recordbot/internal/models"
)

// PgQuerier is the subset of *pgxpool.Pool the Postgres source needs
type PgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Schema expected by Postgres:
//
//	CREATE TABLE match_records (
//		sheet_title    TEXT    NOT NULL,
//		sheet_position INTEGER NOT NULL,
//		row_number     INTEGER NOT NULL,
//		name           TEXT    NOT NULL,
//		result         TEXT    NOT NULL
//	);
const postgresRecordsQuery = `
	SELECT sheet_title, name, result
	FROM match_records
	ORDER BY sheet_position, sheet_title, row_number
`

// Postgres exposes a match_records table as sheets, one per sheet_title.
// Each sheet gets a synthetic header row so it scans like a spreadsheet tab.
// An empty table is an empty dataset, not an error.
type Postgres struct {
	db PgQuerier
}

func NewPostgres(db PgQuerier) *Postgres {
	return &Postgres{db: db}
}

var postgresHeader = []string{"name", "result"}

func (p *Postgres) Sheets(ctx context.Context) ([]models.Sheet, error) {
	rows, err := p.db.Query(ctx, postgresRecordsQuery)
	if err != nil {
		return nil, fmt.Errorf("query match_records: %w", err)
	}
	defer rows.Close()

	out := make([]models.Sheet, 0)
	for rows.Next() {
		var title, name, result string
		if err := rows.Scan(&title, &name, &result); err != nil {
			return nil, fmt.Errorf("scan match_records: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Title != title {
			out = append(out, models.Sheet{Title: title, Rows: [][]string{postgresHeader}})
		}
		last := &out[len(out)-1]
		last.Rows = append(last.Rows, []string{name, result})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match_records: %w", err)
	}
	return out, nil
}
