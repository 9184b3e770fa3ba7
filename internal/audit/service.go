package audit

import (
	"context"
	"fmt"
)

// TimelineSource is the query surface the service needs.
type TimelineSource interface {
	TimelineWindow(ctx context.Context, filters TimelineFilters, offset, limit int) ([]Entry, error)
}

// Service coordinates audit timeline retrieval.
type Service struct {
	repo TimelineSource
}

// NewService builds a Service instance.
func NewService(repo TimelineSource) *Service {
	return &Service{repo: repo}
}

// Timeline returns a page of audit entries.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize
	rows, err := s.repo.TimelineWindow(ctx, filters, offset, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}
