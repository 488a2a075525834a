package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/domain"
)

// PageSize is the number of records requested per page.
const PageSize = 15

var (
	ErrFetchInFlight = errors.New("search: page fetch already in flight")
	ErrNoMorePages   = errors.New("search: no more pages")
	ErrSuperseded    = errors.New("search: term superseded")
)

// Finder is the part of the directory the paginator needs.
type Finder interface {
	Find(ctx context.Context, q directory.Query) ([]domain.User, error)
}

// Status is the pagination state of the active term.
type Status int

const (
	StatusIdle Status = iota
	StatusFetching
	StatusHasResults
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusFetching:
		return "fetching"
	case StatusHasResults:
		return "has-results"
	case StatusExhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// Page is one batch of search results.
type Page struct {
	Term  string
	Users []domain.User
	More  bool // the page was full; another may exist
	First bool // the page starts the result list rather than extending it
	Gen   uint64
}

// Paginator fetches successive pages of directory records for the active
// search term. At most one fetch runs per term; results of a term that has
// since been replaced are dropped with ErrSuperseded.
type Paginator struct {
	finder   Finder
	pageSize int
	logger   *zap.Logger

	mu       sync.Mutex
	term     string
	gen      uint64
	cursor   *directory.Cursor
	fetched  bool
	more     bool
	inFlight bool
}

// NewPaginator returns a paginator over f. pageSize <= 0 uses PageSize.
func NewPaginator(f Finder, pageSize int, logger *zap.Logger) *Paginator {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Paginator{finder: f, pageSize: pageSize, logger: logger.Named("search")}
}

// Reset makes term the active term and discards all pagination state,
// including interest in any fetch still running for the previous term.
func (p *Paginator) Reset(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.term = term
	p.cursor = nil
	p.fetched = false
	p.more = false
	p.inFlight = false
}

// FetchPage queries the next page for term, continuing after the stored
// cursor when there is one. The empty term yields an empty page without
// a remote call.
func (p *Paginator) FetchPage(ctx context.Context, term, excludingUserID string) (Page, error) {
	return p.fetch(ctx, term, excludingUserID, false)
}

// FetchNextPage is FetchPage guarded for scroll-driven loading: it only
// queries when the previous page was full and no fetch is running.
func (p *Paginator) FetchNextPage(ctx context.Context, term, excludingUserID string) (Page, error) {
	return p.fetch(ctx, term, excludingUserID, true)
}

func (p *Paginator) fetch(ctx context.Context, term, excluding string, next bool) (Page, error) {
	p.mu.Lock()
	switch {
	case term != p.term:
		p.mu.Unlock()
		return Page{}, ErrSuperseded
	case term == "":
		gen := p.gen
		p.mu.Unlock()
		return Page{First: true, Gen: gen}, nil
	case p.inFlight:
		p.mu.Unlock()
		return Page{}, ErrFetchInFlight
	case next && !p.more:
		p.mu.Unlock()
		return Page{}, ErrNoMorePages
	}
	gen := p.gen
	var after *directory.Cursor
	if p.cursor != nil {
		c := *p.cursor
		after = &c
	}
	p.inFlight = true
	p.mu.Unlock()

	users, err := p.finder.Find(ctx, directory.Query{
		Keyword:       term,
		ExcludeUserID: excluding,
		Limit:         p.pageSize,
		After:         after,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.logger.Debug("dropping superseded page", zap.String("term", term))
		return Page{}, ErrSuperseded
	}
	p.inFlight = false
	if err != nil {
		return Page{}, fmt.Errorf("fetch users: %w", err)
	}

	p.fetched = true
	p.more = len(users) == p.pageSize
	if len(users) > 0 {
		c := directory.CursorOf(users[len(users)-1])
		p.cursor = &c
	}
	return Page{Term: term, Users: users, More: p.more, First: after == nil, Gen: gen}, nil
}

// Term returns the active term.
func (p *Paginator) Term() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.term
}

// Current reports whether page was fetched for the active term since its
// last Reset. Pages that fail this check must not be shown.
func (p *Paginator) Current(page Page) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return page.Gen == p.gen && page.Term == p.term
}

// Status reports the pagination state of the active term.
func (p *Paginator) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.inFlight:
		return StatusFetching
	case !p.fetched:
		return StatusIdle
	case p.more:
		return StatusHasResults
	default:
		return StatusExhausted
	}
}

// MoreAvailable reports whether the last page was full.
func (p *Paginator) MoreAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.more
}
