//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"dm-server/domain"
	apperrors "dm-server/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IUserRepository interface {
	Create(email, passwordHash string) (domain.User, error)
	GetByID(id string) (domain.User, error)
	GetByEmail(email string) (domain.User, error)
	UpdateProfile(id, firstName, lastName, color string) (domain.User, error)
	All() ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

func idKey(id string) []byte       { return []byte("user:id:" + id) }
func emailKey(email string) []byte { return []byte("user:email:" + email) }

// Create persists a new user and an email index entry pointing at its ID.
// The email key doubles as the uniqueness guard.
func (u *UserRepository) Create(email, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := cbor.Marshal(user)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(idKey(user.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetByID(id string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return domain.User{}, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (u *UserRepository) GetByEmail(email string) (domain.User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return domain.User{}, apperrors.ErrUserNotFound
	}
	return u.GetByID(id)
}

// UpdateProfile sets the display fields and marks the profile as set up.
// An empty color keeps the stored one, mirroring the partial update the
// HTTP API allows.
func (u *UserRepository) UpdateProfile(id, firstName, lastName, color string) (domain.User, error) {
	user, err := u.GetByID(id)
	if err != nil {
		return domain.User{}, err
	}

	user.FirstName = firstName
	user.LastName = lastName
	if color != "" {
		user.Color = color
	}
	user.ProfileSetup = true

	data, err := cbor.Marshal(user)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}
	err = u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(idKey(id), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// All returns every registered user, in key order.
func (u *UserRepository) All() ([]domain.User, error) {
	prefix := []byte("user:id:")

	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var user domain.User
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &user)
			})
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	return users, err
}
