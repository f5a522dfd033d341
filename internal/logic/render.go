package logic

import (
	"fmt"
	"strings"

	"github.com/guildstats/recordbot/internal/models"
)

// DefaultPageSize is the number of leaderboard rows per page
const DefaultPageSize = 10

// RenderSummary formats a lookup result as an embed title and a fixed-width table
func RenderSummary(s *models.UserSummary) (title, body string) {
	title = fmt.Sprintf("📄 %s님의 전적 요약", s.Query)
	body = "```\n" +
		"승   패   전   승률   마지막기록\n" +
		fmt.Sprintf("%-4d %-4d %-4d %5.1f%%   %s\n", s.Wins, s.Losses, s.Total, s.WinRate, s.LastSeen) +
		"```"
	return title, body
}

// Paginate splits the ranking into pages of size entries and renders each one.
// It returns nil for an empty ranking.
func Paginate(entries []models.RankingEntry, size int) []models.Page {
	if len(entries) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	count := (len(entries) + size - 1) / size
	pages := make([]models.Page, 0, count)
	for i := 0; i < count; i++ {
		end := min((i+1)*size, len(entries))
		chunk := entries[i*size : end]
		pages = append(pages, models.Page{
			Index:   i,
			Count:   count,
			Title:   fmt.Sprintf("📊 전체 전적 랭킹 (페이지 %d/%d)", i+1, count),
			Body:    renderRankingTable(chunk),
			Entries: chunk,
		})
	}
	return pages
}

func renderRankingTable(entries []models.RankingEntry) string {
	lines := []string{"```\n순위  이름       승  패  전  승률"}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%-4d %-10s %-3d %-3d %-3d %5.1f%%", e.Rank, e.Name, e.Wins, e.Losses, e.Total, e.WinRate))
	}
	lines = append(lines, "```")
	return strings.Join(lines, "\n")
}
