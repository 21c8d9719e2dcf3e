package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"waitlist-system/internal/status"
	"waitlist-system/internal/store"
	"waitlist-system/models"
	"waitlist-system/monitoring"
	"waitlist-system/utils"
)

const (
	bcryptCost         = 12
	tempPasswordLength = 8
	tempPasswordTTL    = 24 * time.Hour
)

// EmailSender is the transactional email boundary. The returned id is the
// provider's message identifier.
type EmailSender interface {
	SendTempPassword(ctx context.Context, to, username, tempPassword string) (string, error)
}

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type AccountService struct {
	store  store.AccountStore
	emails EmailSender
}

func NewAccountService(accountStore store.AccountStore, emails EmailSender) *AccountService {
	return &AccountService{
		store:  accountStore,
		emails: emails,
	}
}

// Signup validates every field before any store access, then persists the
// user with a bcrypt hash.
func (s *AccountService) Signup(ctx context.Context, req SignupRequest) error {
	if req.Username == "" || req.Password == "" || req.Name == "" || req.Phone == "" || req.Email == "" {
		return status.ErrMissingFields
	}
	if len(req.Username) < models.UsernameMinLen || len(req.Username) > models.UsernameMaxLen {
		return status.ErrUsernameLength
	}
	if n := utf8.RuneCountInString(req.Name); n < models.NameMinLen || n > models.NameMaxLen {
		return status.ErrNameLength
	}
	if len(req.Password) < models.PasswordMinLen {
		return status.ErrPasswordTooShort
	}
	if !models.IsValidPhone(req.Phone) {
		return status.ErrInvalidPhone
	}
	if !models.IsValidEmail(req.Email) {
		return status.ErrInvalidEmail
	}

	exists, err := s.store.UsernameExists(ctx, req.Username)
	if err != nil {
		return err
	}
	if exists {
		return status.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Username: req.Username,
		Password: string(hash),
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    strings.ToLower(req.Email),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return err
	}

	slog.Info("account: user created", "username", user.Username)
	return nil
}

// Login verifies credentials. Unknown user and wrong password collapse to
// the same error so usernames cannot be enumerated.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, status.ErrMissingFields
	}

	user, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, status.ErrUserNotFound) {
		return nil, status.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, status.ErrInvalidCredentials
	}

	return user, nil
}

// FindID recovers the masked username for a name and phone pair.
func (s *AccountService) FindID(ctx context.Context, name, phone string) (string, error) {
	if name == "" || phone == "" {
		return "", status.ErrMissingFields
	}
	if !models.IsValidPhone(phone) {
		return "", status.ErrInvalidPhone
	}

	user, err := s.store.UserByNameAndPhone(ctx, name, phone)
	if err != nil {
		return "", err
	}

	return MaskUsername(user.Username), nil
}

// MaskUsername keeps the first three characters, or one when the username
// has three or fewer, and masks the rest.
func MaskUsername(username string) string {
	keep := 3
	if len(username) <= 3 {
		keep = 1
	}
	if keep > len(username) {
		keep = len(username)
	}
	return username[:keep] + strings.Repeat("*", len(username)-keep)
}

// ResetPassword issues a temporary password. The email goes out first; the
// temp-password record and the live hash are committed only after the
// provider accepts the message, so a failed send leaves the account
// untouched.
func (s *AccountService) ResetPassword(ctx context.Context, username, email string) (string, error) {
	if username == "" || email == "" {
		return "", status.ErrMissingFields
	}
	if !models.IsValidEmail(email) {
		return "", status.ErrInvalidEmail
	}

	user, err := s.store.UserByUsernameAndEmail(ctx, username, strings.ToLower(email))
	if err != nil {
		return "", err
	}

	tempPassword, err := utils.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcryptCost)
	if err != nil {
		return "", err
	}

	messageID, err := s.emails.SendTempPassword(ctx, user.Email, user.Username, tempPassword)
	if err != nil {
		monitoring.TrackEmail(false)
		return "", err
	}
	monitoring.TrackEmail(true)

	record := &models.TempPassword{
		UserID:       user.ID,
		TempPassword: string(hash),
		ExpiresAt:    time.Now().Add(tempPasswordTTL),
	}
	if err := s.store.CreateTempPassword(ctx, record); err != nil {
		return "", err
	}
	if err := s.store.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return "", err
	}

	slog.Info("account: temporary password issued", "username", user.Username, "messageId", messageID)
	return messageID, nil
}
