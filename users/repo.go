package users

import "errors"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("username already exists")
)

type AccountRepo interface {
	Create(account *Account) error
	GetByUsername(username string) (*Account, error)
	GetByID(id string) (*Account, error)
}
