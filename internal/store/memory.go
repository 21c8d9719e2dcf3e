package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"waitlist-system/internal/status"
	"waitlist-system/models"
)

// MemoryStore mirrors the MongoStore semantics in process memory. It backs
// the account service tests and lets the server run without a datastore.
type MemoryStore struct {
	mu            sync.Mutex
	users         []*models.User
	tempPasswords []*models.TempPassword
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return status.ErrUsernameTaken
		}
	}

	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	s.users = append(s.users, &clone)
	return nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) UserByNameAndPhone(_ context.Context, name, phone string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Name == name && u.Phone == phone })
}

func (s *MemoryStore) UserByUsernameAndEmail(_ context.Context, username, email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username && u.Email == email })
}

func (s *MemoryStore) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, status.ErrUserNotFound
}

func (s *MemoryStore) UsernameExists(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreateTempPassword(_ context.Context, record *models.TempPassword) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tempPasswords {
		if existing.UserID == record.UserID && !existing.Used {
			existing.Used = true
		}
	}

	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now()

	clone := *record
	s.tempPasswords = append(s.tempPasswords, &clone)
	return nil
}

func (s *MemoryStore) UpdateUserPassword(_ context.Context, userID primitive.ObjectID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID == userID {
			user.Password = passwordHash
			user.UpdatedAt = time.Now()
			return nil
		}
	}
	return status.ErrUserNotFound
}

// TempPasswordsForUser returns copies of the user's temp password records,
// oldest first.
func (s *MemoryStore) TempPasswordsForUser(userID primitive.ObjectID) []models.TempPassword {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []models.TempPassword
	for _, record := range s.tempPasswords {
		if record.UserID == userID {
			records = append(records, *record)
		}
	}
	return records
}
