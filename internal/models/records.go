package models

import "strings"

// Outcome labels as they appear in the result column of a sheet
const (
	OutcomeWinLabel  = "승"
	OutcomeLossLabel = "패"
)

type Outcome int

const (
	OutcomeOther Outcome = iota
	OutcomeWin
	OutcomeLoss
)

// ParseOutcome maps a trimmed result cell to an Outcome. Anything that is not
// an exact win/loss label counts as OutcomeOther.
func ParseOutcome(cell string) Outcome {
	switch strings.TrimSpace(cell) {
	case OutcomeWinLabel:
		return OutcomeWin
	case OutcomeLossLabel:
		return OutcomeLoss
	default:
		return OutcomeOther
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "other"
	}
}

// Sheet is one named tab of the record spreadsheet. Rows[0] is the header.
type Sheet struct {
	Title string     `json:"title"`
	Rows  [][]string `json:"rows"`
}

// Record is one logged match outcome extracted from a sheet row
type Record struct {
	Name    string
	Outcome Outcome
	Sheet   string
}

// UserStat accumulates outcomes for one subject name
type UserStat struct {
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	LastSeen string `json:"last_seen,omitempty"`
}

func (s UserStat) Total() int {
	return s.Wins + s.Losses
}

// WinRate returns wins/total*100, or 0 when there are no decided matches.
func (s UserStat) WinRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.Wins) / float64(total) * 100.0
}

// UserSummary is the result of a single-user lookup
type UserSummary struct {
	Query    string  `json:"query"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Total    int     `json:"total"`
	WinRate  float64 `json:"win_rate"`
	LastSeen string  `json:"last_seen"`
}

// Status tags the outcome of a command so the transport layer can pick a message
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoRecords   Status = "no_records"
	StatusEmpty       Status = "empty"
	StatusUnavailable Status = "unavailable"
)

type LookupResult struct {
	Status  Status
	Summary *UserSummary
}

type RankingResult struct {
	Status  Status
	Entries []RankingEntry
}
