package logic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/guildstats/recordbot/internal/models"
	"github.com/guildstats/recordbot/internal/source"
)

type recordService struct {
	src source.Source
}

// NewRecordService builds the aggregator over src. Every call rescans the
// source; nothing is cached here.
func NewRecordService(src source.Source) RecordService {
	return &recordService{src: src}
}

// Lookup tallies one user across all sheets. A nil summary means no decided
// matches were found for that name.
func (s *recordService) Lookup(ctx context.Context, name string) (*models.UserSummary, error) {
	sheets, err := s.src.Sheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheets: %w", err)
	}
	return TallyUser(ParseRecords(sheets), name), nil
}

// RankAll builds the full leaderboard. An empty slice means no user has a
// decided match.
func (s *recordService) RankAll(ctx context.Context) ([]models.RankingEntry, error) {
	sheets, err := s.src.Sheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheets: %w", err)
	}
	return BuildRanking(ParseRecords(sheets)), nil
}

// ParseRecords flattens sheets into records in scan order. The header row of
// every sheet is skipped, as is any row with fewer than two cells.
func ParseRecords(sheets []models.Sheet) []models.Record {
	var records []models.Record
	for _, sheet := range sheets {
		if len(sheet.Rows) <= 1 {
			continue
		}
		for _, row := range sheet.Rows[1:] {
			if len(row) < 2 {
				continue
			}
			records = append(records, models.Record{
				Name:    strings.TrimSpace(row[0]),
				Outcome: models.ParseOutcome(row[1]),
				Sheet:   sheet.Title,
			})
		}
	}
	return records
}

// TallyUser matches name case-insensitively against every record. The query is
// compared as given; only the sheet cells are trimmed. LastSeen is the sheet of
// the last matching record in scan order, whatever its outcome.
func TallyUser(records []models.Record, name string) *models.UserSummary {
	var stat models.UserStat
	for _, r := range records {
		if !strings.EqualFold(r.Name, name) {
			continue
		}
		switch r.Outcome {
		case models.OutcomeWin:
			stat.Wins++
		case models.OutcomeLoss:
			stat.Losses++
		}
		stat.LastSeen = r.Sheet
	}

	if stat.Total() == 0 {
		return nil
	}
	return &models.UserSummary{
		Query:    name,
		Wins:     stat.Wins,
		Losses:   stat.Losses,
		Total:    stat.Total(),
		WinRate:  stat.WinRate(),
		LastSeen: stat.LastSeen,
	}
}

// TallyAll groups records by exact trimmed name, so "Alice" and "alice" are
// different users. Output keeps first-seen order.
func TallyAll(records []models.Record) []models.UserStat {
	index := make(map[string]int)
	var stats []models.UserStat

	for _, r := range records {
		i, ok := index[r.Name]
		if !ok {
			i = len(stats)
			index[r.Name] = i
			stats = append(stats, models.UserStat{Name: r.Name})
		}
		switch r.Outcome {
		case models.OutcomeWin:
			stats[i].Wins++
		case models.OutcomeLoss:
			stats[i].Losses++
		}
		stats[i].LastSeen = r.Sheet
	}
	return stats
}

// BuildRanking drops users without decided matches and orders the rest by
// win rate, then by total matches, both descending. Full ties keep first-seen
// order. Ranks are 1-based.
func BuildRanking(records []models.Record) []models.RankingEntry {
	entries := make([]models.RankingEntry, 0)
	for _, stat := range TallyAll(records) {
		if stat.Total() == 0 {
			continue
		}
		entries = append(entries, models.RankingEntry{
			Name:    stat.Name,
			Wins:    stat.Wins,
			Losses:  stat.Losses,
			Total:   stat.Total(),
			WinRate: stat.WinRate(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WinRate != entries[j].WinRate {
			return entries[i].WinRate > entries[j].WinRate
		}
		return entries[i].Total > entries[j].Total
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
