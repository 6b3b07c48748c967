package service

import "errors"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrInvalidPage is returned for a page number past the last page.
var ErrInvalidPage = errors.New("invalid page")

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) normalize() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Page is one page of results plus the total row count.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Size  int
}

func (p *Page[T]) HasNext() bool {
	return p.Page*p.Size < p.Total
}

func (p *Page[T]) HasPrevious() bool {
	return p.Page > 1
}

// checkPage accepts page 1 of an empty set and rejects pages past the end.
func checkPage(req PageRequest, total int) error {
	if req.Page > 1 && (req.Page-1)*req.Size >= total {
		return ErrInvalidPage
	}
	return nil
}
