package models

// RankingEntry is one row of the win-rate leaderboard
type RankingEntry struct {
	Rank    int     `json:"rank"`
	Name    string  `json:"name"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Total   int     `json:"total"`
	WinRate float64 `json:"win_rate"`
}

// Page is a rendered, immutable chunk of the leaderboard.
// Index is zero-based; Count is the total number of pages.
type Page struct {
	Index   int            `json:"index"`
	Count   int            `json:"count"`
	Title   string         `json:"title"`
	Body    string         `json:"body"`
	Entries []RankingEntry `json:"entries"`
}

// RankingPageResponse is the JSON shape served by the ranking endpoint
type RankingPageResponse struct {
	Entries []RankingEntry `json:"entries"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Pages   int            `json:"pages"`
}
