package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/domain"
)

// stubFinder serves queries from a memory directory and can hold a query
// until released.
type stubFinder struct {
	dir *directory.Memory

	mu      sync.Mutex
	calls   []directory.Query
	block   map[string]chan struct{}
	entered chan string
	fail    error
}

func newStubFinder(t *testing.T, names ...string) *stubFinder {
	t.Helper()
	dir := directory.NewMemory()
	for i, name := range names {
		u := domain.User{ID: fmt.Sprintf("u%03d", i), DisplayName: name, Username: fmt.Sprintf("user_%03d", i)}
		require.NoError(t, dir.Create(context.Background(), u))
	}
	return &stubFinder{dir: dir, block: make(map[string]chan struct{}), entered: make(chan string, 8)}
}

func (f *stubFinder) hold(term string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.block[term] = ch
	return ch
}

func (f *stubFinder) Find(ctx context.Context, q directory.Query) ([]domain.User, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.block[q.Keyword]
	fail := f.fail
	f.mu.Unlock()

	f.entered <- q.Keyword
	if gate != nil {
		<-gate
	}
	if fail != nil {
		return nil, fail
	}
	return f.dir.Find(ctx, q)
}

func (f *stubFinder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %02d", prefix, i)
	}
	return out
}

func TestPaginatorExhaustion(t *testing.T) {
	f := newStubFinder(t, names("Sam", 20)...)
	p := NewPaginator(f, PageSize, nil)
	ctx := context.Background()

	p.Reset("Sam")
	require.Equal(t, StatusIdle, p.Status())

	first, err := p.FetchPage(ctx, "Sam", "")
	require.NoError(t, err)
	require.Len(t, first.Users, PageSize)
	require.True(t, first.More)
	require.True(t, first.First)
	require.Equal(t, StatusHasResults, p.Status())

	second, err := p.FetchNextPage(ctx, "Sam", "")
	require.NoError(t, err)
	require.Len(t, second.Users, 5)
	require.False(t, second.More)
	require.False(t, second.First)
	require.Equal(t, StatusExhausted, p.Status())

	_, err = p.FetchNextPage(ctx, "Sam", "")
	require.ErrorIs(t, err, ErrNoMorePages)
	require.Equal(t, 2, f.callCount())
}

func TestPaginatorContinuity(t *testing.T) {
	f := newStubFinder(t, append(names("Ann", 18), names("Anna", 18)...)...)
	p := NewPaginator(f, PageSize, nil)
	ctx := context.Background()

	p.Reset("Ann")
	var all []domain.User
	page, err := p.FetchPage(ctx, "Ann", "u005")
	require.NoError(t, err)
	all = append(all, page.Users...)
	for page.More {
		page, err = p.FetchNextPage(ctx, "Ann", "u005")
		require.NoError(t, err)
		all = append(all, page.Users...)
	}

	require.Len(t, all, 35)
	seen := make(map[string]bool)
	for i, u := range all {
		require.NotEqual(t, "u005", u.ID)
		require.False(t, seen[u.ID], "duplicate user %s", u.ID)
		seen[u.ID] = true
		if i > 0 {
			require.LessOrEqual(t, all[i-1].DisplayName, u.DisplayName)
		}
	}
}

func TestPaginatorDropsSupersededTerm(t *testing.T) {
	f := newStubFinder(t, "Alice", "Alina", "Bob", "Bobby")
	p := NewPaginator(f, PageSize, nil)
	ctx := context.Background()

	release := f.hold("Al")
	p.Reset("Al")
	lateErr := make(chan error, 1)
	go func() {
		_, err := p.FetchPage(ctx, "Al", "")
		lateErr <- err
	}()
	require.Equal(t, "Al", <-f.entered)

	p.Reset("Bo")
	page, err := p.FetchPage(ctx, "Bo", "")
	require.NoError(t, err)
	<-f.entered
	require.Len(t, page.Users, 2)

	close(release)
	require.ErrorIs(t, <-lateErr, ErrSuperseded)
	require.Equal(t, "Bo", p.Term())
	require.Equal(t, StatusExhausted, p.Status())
}

func TestPaginatorSingleFlight(t *testing.T) {
	f := newStubFinder(t, names("Sam", 30)...)
	p := NewPaginator(f, PageSize, nil)
	ctx := context.Background()

	p.Reset("Sam")
	_, err := p.FetchPage(ctx, "Sam", "")
	require.NoError(t, err)
	<-f.entered

	release := f.hold("Sam")
	done := make(chan error, 1)
	go func() {
		_, err := p.FetchNextPage(ctx, "Sam", "")
		done <- err
	}()
	<-f.entered

	_, err = p.FetchNextPage(ctx, "Sam", "")
	require.ErrorIs(t, err, ErrFetchInFlight)
	require.Equal(t, StatusFetching, p.Status())

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, 2, f.callCount())
}

func TestPaginatorFailureKeepsCursor(t *testing.T) {
	f := newStubFinder(t, names("Sam", 20)...)
	p := NewPaginator(f, PageSize, nil)
	ctx := context.Background()

	p.Reset("Sam")
	_, err := p.FetchPage(ctx, "Sam", "")
	require.NoError(t, err)
	<-f.entered

	boom := errors.New("network unreachable")
	f.mu.Lock()
	f.fail = boom
	f.mu.Unlock()

	_, err = p.FetchNextPage(ctx, "Sam", "")
	require.ErrorIs(t, err, boom)
	<-f.entered
	require.Equal(t, StatusHasResults, p.Status(), "in-flight guard not released")

	f.mu.Lock()
	f.fail = nil
	f.mu.Unlock()

	page, err := p.FetchNextPage(ctx, "Sam", "")
	require.NoError(t, err)
	<-f.entered
	require.Len(t, page.Users, 5)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, f.calls[1].After, f.calls[2].After, "retry did not resume from the same cursor")
}

func TestPaginatorEmptyTerm(t *testing.T) {
	f := newStubFinder(t, "Alice")
	p := NewPaginator(f, PageSize, nil)

	p.Reset("")
	page, err := p.FetchPage(context.Background(), "", "")
	require.NoError(t, err)
	require.Empty(t, page.Users)
	require.Equal(t, 0, f.callCount())
}

func TestPaginatorRejectsInactiveTerm(t *testing.T) {
	f := newStubFinder(t, "Alice")
	p := NewPaginator(f, PageSize, nil)

	p.Reset("Al")
	_, err := p.FetchPage(context.Background(), "Bo", "")
	require.ErrorIs(t, err, ErrSuperseded)
	require.Equal(t, 0, f.callCount())
}

func TestPaginatorCurrent(t *testing.T) {
	f := newStubFinder(t, "Mark", "Mary", "Matt")
	p := NewPaginator(f, PageSize, nil)
	ctx := context.Background()

	p.Reset("Mar")
	late, err := p.FetchPage(ctx, "Mar", "")
	require.NoError(t, err)
	require.True(t, p.Current(late))

	p.Reset("Mat")
	require.False(t, p.Current(late))
	page, err := p.FetchPage(ctx, "Mat", "")
	require.NoError(t, err)
	require.True(t, p.Current(page))

	// Re-committing the same term starts over.
	p.Reset("Mat")
	require.False(t, p.Current(page))
}
