package fakeuserrepo

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/secops-console/users"
)

var _ users.AccountRepo = (*FakeAccountRepo)(nil)

type FakeAccountRepo struct {
	accounts    map[string]*users.Account
	usernameIDs map[string]string // username to account id
	lock        sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts:    make(map[string]*users.Account),
		usernameIDs: make(map[string]string),
	}
}

func (ar *FakeAccountRepo) Create(account *users.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	if _, ok := ar.usernameIDs[account.Username]; ok {
		return users.ErrAccountExists
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	stored := *account
	ar.accounts[account.ID] = &stored
	ar.usernameIDs[account.Username] = account.ID
	return nil
}

func (ar *FakeAccountRepo) GetByUsername(username string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	id, ok := ar.usernameIDs[username]
	if !ok {
		return nil, users.ErrAccountNotFound
	}
	account := *ar.accounts[id]
	return &account, nil
}

func (ar *FakeAccountRepo) GetByID(id string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	stored, ok := ar.accounts[id]
	if !ok {
		return nil, users.ErrAccountNotFound
	}
	account := *stored
	return &account, nil
}

// Count returns the number of stored accounts
func (ar *FakeAccountRepo) Count() int {
	ar.lock.RLock()
	defer ar.lock.RUnlock()
	return len(ar.accounts)
}
