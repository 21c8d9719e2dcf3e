package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"waitlist-system/models"
)

// AccountStore is the document-store boundary for user and temporary
// password records. Lookups return status.ErrUserNotFound when no document
// matches.
type AccountStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByNameAndPhone(ctx context.Context, name, phone string) (*models.User, error)
	UserByUsernameAndEmail(ctx context.Context, username, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	// CreateTempPassword marks every prior unused temp password for the
	// user as used before inserting the new record.
	CreateTempPassword(ctx context.Context, record *models.TempPassword) error
	UpdateUserPassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error
}
