//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	goerrors "errors"
	"firechat/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	userPrefix    = "user:"
	revokedPrefix = "revoked:"
)

type IUserRepository interface {
	CreateUser(user User) (User, error)
	GetUserByEmail(email string) (User, error)
	Revoke(tokenID string, ttl time.Duration) error
	IsRevoked(tokenID string) (bool, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

// User is the storage representation of an account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PhotoURL     string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// CreateUser persists a new account keyed by email. ID, roles and CreatedAt are assigned here.
func (u *UserRepository) CreateUser(user User) (User, error) {
	user.ID = uuid.New().String()
	user.Roles = []string{"user"}
	user.CreatedAt = time.Now().UTC()

	data, err := marshalUser(user)
	if err != nil {
		return User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte(userPrefix + user.Email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		} else if !goerrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userPrefix + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			user, err = unmarshalUser(val)
			return err
		})
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Revoke remembers a signed-out token until it would have expired anyway.
func (u *UserRepository) Revoke(tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return u.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(revokedPrefix+tokenID), nil).WithTTL(ttl))
	})
}

func (u *UserRepository) IsRevoked(tokenID string) (bool, error) {
	err := u.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(revokedPrefix + tokenID))
		return err
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
