package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// UnmarshalJSON accepts both the envelope and a bare array, which unpaginated
// endpoints return.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("[Page.UnmarshalJSON] %w", err)
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	type envelope Page[T]
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return fmt.Errorf("[Page.UnmarshalJSON] %w", err)
	}
	*p = Page[T](env)
	return nil
}

// Pagination is the navigation state for one page of a list.
type Pagination struct {
	Page     int
	PageSize int
	Count    int
	Pages    int
}

// NewPagination computes the page count for count items split into pages of
// pageSize. Pages are numbered from 1.
func NewPagination(page, pageSize, count int) Pagination {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}
	pages := (count + pageSize - 1) / pageSize
	return Pagination{Page: page, PageSize: pageSize, Count: count, Pages: pages}
}

// Pagination returns the navigation state of p when it is page number page.
func (p Page[T]) Pagination(page, pageSize int) Pagination {
	return NewPagination(page, pageSize, p.Count)
}

func (p Pagination) HasPrevious() bool {
	return p.Page > 1
}

func (p Pagination) HasNext() bool {
	return p.Page < p.Pages
}
