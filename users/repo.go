package users

// AccountRepo stores accounts for the development backend.
type AccountRepo interface {
	Upsert(account *Account) error
	Delete(id int) error
	GetByUsername(username string) (*Account, error)
	GetByID(id int) (*Account, error)
	// List returns accounts with the given role (all roles when empty),
	// ordered by ID, plus the total before paging.
	List(role Role, offset, limit int) ([]*Account, int, error)
}
