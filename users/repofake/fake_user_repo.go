package fakeuserrepo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/users"
)

var _ users.AccountRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	accounts  map[int]*users.Account
	usernames map[string]int // username to account id
	nextID    int
	lock      sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		accounts:  make(map[int]*users.Account),
		usernames: make(map[string]int),
	}
}

// Upsert assigns the next ID to new accounts. Usernames are unique.
func (ur *FakeUserRepo) Upsert(account *users.Account) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if id, ok := ur.usernames[account.Username]; ok && id != account.ID {
		return fmt.Errorf("username %q already taken", account.Username)
	}
	if account.ID == 0 {
		ur.nextID++
		account.ID = ur.nextID
	} else if account.ID > ur.nextID {
		ur.nextID = account.ID
	}
	if old, ok := ur.accounts[account.ID]; ok && old.Username != account.Username {
		delete(ur.usernames, old.Username)
	}
	ur.accounts[account.ID] = account
	ur.usernames[account.Username] = account.ID
	return nil
}

func (ur *FakeUserRepo) Delete(id int) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	account, ok := ur.accounts[id]
	if !ok {
		return errors.ErrNotFound
	}
	delete(ur.usernames, account.Username)
	delete(ur.accounts, id)
	return nil
}

func (ur *FakeUserRepo) GetByUsername(username string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernames[username]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return ur.accounts[id], nil
}

func (ur *FakeUserRepo) GetByID(id int) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	account, ok := ur.accounts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return account, nil
}

func (ur *FakeUserRepo) List(role users.Role, offset, limit int) ([]*users.Account, int, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]*users.Account, 0, len(ur.accounts))
	for _, a := range ur.accounts {
		if role != "" && a.Role != role {
			continue
		}
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	total := len(list)
	if offset >= total {
		return []*users.Account{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return list[offset:end], total, nil
}
