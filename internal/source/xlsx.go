package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/guildstats/recordbot/internal/models"
)

// Workbook reads records from a local .xlsx file. The file is reopened on
// every scan so edits are picked up without a restart.
type Workbook struct {
	path string
}

func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

func (w *Workbook) Sheets(ctx context.Context) ([]models.Sheet, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}

	out := make([]models.Sheet, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		out = append(out, models.Sheet{Title: name, Rows: padRows(rows)})
	}
	return out, nil
}
