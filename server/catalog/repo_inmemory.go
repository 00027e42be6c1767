package catalog

import (
	"sort"
	"sync"

	"github.com/jrsteele09/pcrs-client/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory Repo. idOf locates the id field
// of a row so Insert can assign it.
type InMemoryRepo[T any] struct {
	mu     sync.RWMutex
	rows   map[int]T
	nextID int
	idOf   func(*T) *int
}

var _ Repo[struct{ ID int }] = (*InMemoryRepo[struct{ ID int }])(nil)

func NewInMemoryRepo[T any](idOf func(*T) *int) *InMemoryRepo[T] {
	return &InMemoryRepo[T]{
		rows: make(map[int]T),
		idOf: idOf,
	}
}

// Insert assigns the next id unless the row already carries one.
func (r *InMemoryRepo[T]) Insert(row T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.idOf(&row)
	if *id == 0 {
		r.nextID++
		*id = r.nextID
	} else if *id > r.nextID {
		r.nextID = *id
	}
	r.rows[*id] = row
	return row, nil
}

func (r *InMemoryRepo[T]) Update(id int, fn func(row *T) error) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		var zero T
		return zero, errors.ErrNotFound
	}
	if err := fn(&row); err != nil {
		var zero T
		return zero, err
	}
	*r.idOf(&row) = id
	r.rows[id] = row
	return row, nil
}

func (r *InMemoryRepo[T]) Get(id int) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		var zero T
		return zero, errors.ErrNotFound
	}
	return row, nil
}

func (r *InMemoryRepo[T]) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return errors.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *InMemoryRepo[T]) List(match func(T) bool, offset, limit int) ([]T, int) {
	r.mu.RLock()
	ids := make([]int, 0, len(r.rows))
	for id, row := range r.rows {
		if match == nil || match(row) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	total := len(ids)
	if offset >= total {
		r.mu.RUnlock()
		return []T{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	out := make([]T, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, r.rows[id])
	}
	r.mu.RUnlock()
	return out, total
}
