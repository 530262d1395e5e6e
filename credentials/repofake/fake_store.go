package fakecredentials

import (
	"context"
	"sync"

	"github.com/jrsteele09/secops-console/credentials"
	"github.com/jrsteele09/secops-console/users"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory Store that counts writes, for tests.
type FakeStore struct {
	lock    sync.RWMutex
	entries map[string]string
	saves   int
	clears  int
	SaveErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{entries: make(map[string]string)}
}

func (fs *FakeStore) Save(_ context.Context, token string, user users.Profile) error {
	if fs.SaveErr != nil {
		return fs.SaveErr
	}
	rawUser, err := credentials.EncodeProfile(user)
	if err != nil {
		return err
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.entries[credentials.TokenKey] = token
	fs.entries[credentials.UserKey] = rawUser
	fs.saves++
	return nil
}

func (fs *FakeStore) Read(_ context.Context) (string, *users.Profile) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.entries[credentials.TokenKey], credentials.DecodeProfile(fs.entries[credentials.UserKey])
}

func (fs *FakeStore) Clear(_ context.Context) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	delete(fs.entries, credentials.TokenKey)
	delete(fs.entries, credentials.UserKey)
	fs.clears++
	return nil
}

// SetRaw plants raw entries, bypassing profile encoding.
func (fs *FakeStore) SetRaw(token, rawUser string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.entries[credentials.TokenKey] = token
	fs.entries[credentials.UserKey] = rawUser
}

// Raw returns the stored entries as written.
func (fs *FakeStore) Raw() map[string]string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	out := make(map[string]string, len(fs.entries))
	for k, v := range fs.entries {
		out[k] = v
	}
	return out
}

func (fs *FakeStore) Saves() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.saves
}

func (fs *FakeStore) Clears() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.clears
}
