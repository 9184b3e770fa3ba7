package audit

import (
	"context"
	"testing"
	"time"
)

type stubTimelineSource struct {
	entries    []Entry
	lastOffset int
	lastLimit  int
}

func (s *stubTimelineSource) TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error) {
	s.lastOffset = offset
	s.lastLimit = limit
	if offset >= len(s.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return s.entries[offset:end], nil
}

func makeEntries(n int) []Entry {
	entries := make([]Entry, n)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range entries {
		entries[i] = Entry{
			ID:       int64(n - i),
			At:       base.Add(-time.Duration(i) * time.Minute),
			Role:     "auditor",
			Resource: "roles",
			Action:   "read",
			Outcome:  "allow",
		}
	}
	return entries
}

func TestTimelineFirstPageWithNext(t *testing.T) {
	repo := &stubTimelineSource{entries: makeEntries(25)}
	service := NewService(repo)

	result, err := service.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 {
		t.Fatalf("expected a next page, got %+v", result.Paging)
	}
	if repo.lastLimit != 21 {
		t.Fatalf("expected limit+1 probe, got %d", repo.lastLimit)
	}
}

func TestTimelineLastPage(t *testing.T) {
	repo := &stubTimelineSource{entries: makeEntries(25)}
	service := NewService(repo)

	result, err := service.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 20})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(result.Rows))
	}
	if result.Paging.HasNext {
		t.Fatal("no next page expected")
	}
	if result.Paging.PrevPage != 1 {
		t.Fatalf("expected prev page 1, got %d", result.Paging.PrevPage)
	}
	if repo.lastOffset != 20 {
		t.Fatalf("expected offset 20, got %d", repo.lastOffset)
	}
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineSource{entries: makeEntries(100)}
	service := NewService(repo)

	result, err := service.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Paging.PageSize != 50 {
		t.Fatalf("expected clamped page size 50, got %d", result.Paging.PageSize)
	}
	if len(result.Rows) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(result.Rows))
	}
}
