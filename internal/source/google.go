package source

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/guildstats/recordbot/internal/models"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// GoogleConfig configures the Google Sheets source
type GoogleConfig struct {
	CredentialsJSON []byte
	SpreadsheetID   string
	// SpreadsheetName is resolved through Drive when SpreadsheetID is empty
	SpreadsheetName string
	Concurrency     int
}

// GoogleSheets reads every worksheet of one spreadsheet through the Sheets API
type GoogleSheets struct {
	values        *sheets.SpreadsheetsService
	spreadsheetID string
	concurrency   int
}

// NewGoogleSheets authenticates with a service account and resolves the target
// spreadsheet. It fails if the spreadsheet cannot be found.
func NewGoogleSheets(ctx context.Context, cfg GoogleConfig) (*GoogleSheets, error) {
	opts := []option.ClientOption{
		option.WithCredentialsJSON(cfg.CredentialsJSON),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope, drive.DriveMetadataReadonlyScope),
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	id := cfg.SpreadsheetID
	if id == "" {
		driveSvc, err := drive.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("drive client: %w", err)
		}
		if id, err = resolveSpreadsheetID(ctx, driveSvc, cfg.SpreadsheetName); err != nil {
			return nil, err
		}
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	return &GoogleSheets{
		values:        svc.Spreadsheets,
		spreadsheetID: id,
		concurrency:   cfg.Concurrency,
	}, nil
}

func resolveSpreadsheetID(ctx context.Context, svc *drive.Service, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)
	list, err := svc.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("lookup spreadsheet %q: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q not found or not shared with the service account", name)
	}
	return list.Files[0].Id, nil
}

// SpreadsheetID returns the resolved spreadsheet identifier
func (g *GoogleSheets) SpreadsheetID() string {
	return g.spreadsheetID
}

// Sheets fetches worksheet titles first, then every worksheet's values in
// parallel. The result keeps the worksheet order of the spreadsheet.
func (g *GoogleSheets) Sheets(ctx context.Context) ([]models.Sheet, error) {
	meta, err := g.values.Get(g.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("spreadsheet metadata: %w", err)
	}
	if len(meta.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	out := make([]models.Sheet, len(meta.Sheets))

	g2, gctx := errgroup.WithContext(ctx)
	g2.SetLimit(g.concurrency)
	for i, ws := range meta.Sheets {
		i := i
		title := ws.Properties.Title
		g2.Go(func() error {
			vr, err := g.values.Values.Get(g.spreadsheetID, quoteSheetRange(title)).Context(gctx).Do()
			if err != nil {
				return fmt.Errorf("sheet %q: %w", title, err)
			}
			out[i] = models.Sheet{Title: title, Rows: padRows(stringifyValues(vr.Values))}
			return nil
		})
	}

	if err := g2.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// quoteSheetRange builds an A1 range that selects the whole worksheet
func quoteSheetRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func stringifyValues(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows
}
