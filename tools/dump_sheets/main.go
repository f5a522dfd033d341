package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/guildstats/recordbot/internal/logic"
	"github.com/guildstats/recordbot/internal/models"
	"github.com/guildstats/recordbot/internal/source"
)

// Prints what the aggregator sees in a workbook: per-sheet row counts, the
// parsed records and the rendered ranking pages.
func main() {
	workbook := flag.String("workbook", "", "path to the .xlsx workbook")
	user := flag.String("user", "", "also print the lookup summary for this name")
	export := flag.String("export", "", "write the ranking to this .xlsx file")
	flag.Parse()

	if *workbook == "" {
		log.Fatal("-workbook is required")
	}

	sheets, err := source.NewWorkbook(*workbook).Sheets(context.Background())
	if err != nil {
		log.Fatalf("Failed to read workbook: %v", err)
	}

	for _, s := range sheets {
		short := 0
		for i, row := range s.Rows {
			if i > 0 && len(row) < 2 {
				short++
			}
		}
		fmt.Printf("sheet %-16q rows=%-5d short=%d\n", s.Title, len(s.Rows), short)
	}

	records := logic.ParseRecords(sheets)
	counts := map[models.Outcome]int{}
	for _, r := range records {
		counts[r.Outcome]++
	}
	fmt.Printf("\nrecords=%d win=%d loss=%d other=%d\n\n",
		len(records), counts[models.OutcomeWin], counts[models.OutcomeLoss], counts[models.OutcomeOther])

	if *user != "" {
		if summary := logic.TallyUser(records, *user); summary != nil {
			title, body := logic.RenderSummary(summary)
			fmt.Printf("%s\n%s\n\n", title, body)
		} else {
			fmt.Printf("no records for %q\n\n", *user)
		}
	}

	ranking := logic.BuildRanking(records)
	for _, p := range logic.Paginate(ranking, logic.DefaultPageSize) {
		fmt.Printf("%s\n%s\n\n", p.Title, p.Body)
	}

	if *export != "" {
		if err := exportRanking(*export, ranking); err != nil {
			log.Fatalf("Failed to export ranking: %v", err)
		}
		fmt.Printf("Saved: %s\n", *export)
	}
}

func exportRanking(path string, ranking []models.RankingEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "ranking"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := []interface{}{"순위", "이름", "승", "패", "전", "승률"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, e := range ranking {
		cell := "A" + strconv.Itoa(i+2)
		row := []interface{}{e.Rank, e.Name, e.Wins, e.Losses, e.Total, e.WinRate}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
