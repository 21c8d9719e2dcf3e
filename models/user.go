package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is one account document. The password field always holds a bcrypt
// hash, never the plaintext.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone" json:"phone"`
	Email     string             `bson:"email" json:"email"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TempPassword records one issued temporary password. Records are kept
// forever; issuing a new one marks the user's prior unused records used.
type TempPassword struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	TempPassword string             `bson:"tempPassword" json:"-"`
	ExpiresAt    time.Time          `bson:"expiresAt" json:"expiresAt"`
	Used         bool               `bson:"used" json:"used"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
	PasswordMinLen = 6
	NameMinLen     = 2
	NameMaxLen     = 100
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
