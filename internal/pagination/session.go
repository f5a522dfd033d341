// Package pagination holds the cursor state behind a paginated leaderboard
// message. Navigation is kept free of any chat transport; the Manager only
// adds identity and inactivity expiry on top of Session.
package pagination

import (
	"errors"
	"sync"

	"github.com/guildstats/recordbot/internal/models"
)

var ErrNoPages = errors.New("pagination requires at least one page")

// Direction of a navigation request
type Direction int

const (
	Prev Direction = iota
	Next
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Retreat moves the cursor back by one. It reports false at the first page.
func Retreat(cursor int) (int, bool) {
	if cursor > 0 {
		return cursor - 1, true
	}
	return cursor, false
}

// Advance moves the cursor forward by one. It reports false at the last page.
func Advance(cursor, count int) (int, bool) {
	if cursor < count-1 {
		return cursor + 1, true
	}
	return cursor, false
}

// Session is a cursor over immutable pages. It is safe for concurrent use;
// navigation calls are applied one at a time in arrival order.
type Session struct {
	ID string

	mu      sync.Mutex
	pages   []models.Page
	cursor  int
	expired bool
}

func NewSession(id string, pages []models.Page) (*Session, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return &Session{ID: id, pages: pages}, nil
}

// Current returns the page at the cursor
func (s *Session) Current() models.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[s.cursor]
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) PageCount() int {
	return len(s.pages)
}

// Prev moves to the previous page and reports whether the view changed
func (s *Session) Prev() (models.Page, bool) {
	return s.Move(Prev)
}

// Next moves to the next page and reports whether the view changed
func (s *Session) Next() (models.Page, bool) {
	return s.Move(Next)
}

// Move applies one navigation step. Expired sessions never move.
func (s *Session) Move(dir Direction) (models.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expired {
		return s.pages[s.cursor], false
	}

	var moved bool
	switch dir {
	case Prev:
		s.cursor, moved = Retreat(s.cursor)
	case Next:
		s.cursor, moved = Advance(s.cursor, len(s.pages))
	}
	return s.pages[s.cursor], moved
}

// Expire moves the session to its terminal state. It reports false if the
// session was already expired.
func (s *Session) Expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expired {
		return false
	}
	s.expired = true
	return true
}

func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}
