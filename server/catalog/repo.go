// Package catalog holds the development backend's products, orders and
// benchmarks.
package catalog

// Repo is a table of rows keyed by an integer id the repo assigns.
type Repo[T any] interface {
	Insert(row T) (T, error)
	// Update applies fn to a copy of the row and stores it if fn succeeds.
	Update(id int, fn func(row *T) error) (T, error)
	Get(id int) (T, error)
	Delete(id int) error
	// List returns matching rows ordered by id plus the total before paging.
	// A nil match accepts every row; limit <= 0 means no limit.
	List(match func(T) bool, offset, limit int) ([]T, int)
}
