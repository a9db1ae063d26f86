package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserStore defines the user persistence the credential store relies on.
type UserStore interface {
	CreateUser(user *entities.User) error
	EmailExists(email string) (bool, error)
	GetUserByEmail(email string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	CountUsers() (int64, error)
}

// Service registers users and verifies their credentials.
type Service struct {
	users  UserStore
	config config.Auth

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a new authentication service.
func NewService(users UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		config: cfg,
	}
}

// Register validates the input, hashes the password and stores a new user.
// Every violated rule is reported in one validation error.
func (s *Service) Register(email, name, password string) (uint, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	ve := &apperr.ValidationError{}
	switch {
	case email == "":
		ve.Add("email is required")
	case len(email) > maxEmailLength || !emailPattern.MatchString(email):
		ve.Add("email is not a valid address")
	}
	if name == "" {
		ve.Add("name is required")
	}
	switch err := ValidatePassword(password); {
	case errors.Is(err, ErrPasswordTooShort):
		ve.Add("password must be at least %d characters", MinPasswordLength)
	case errors.Is(err, ErrPasswordTooLong):
		ve.Add("password must not exceed %d bytes", MaxPasswordBytes)
	}
	if err := ve.OrNil(); err != nil {
		return 0, err
	}

	exists, err := s.users.EmailExists(email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, apperr.ErrDuplicateEmail
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return 0, apperr.Storage("hash password", fmt.Errorf("failed to hash password: %w", err))
	}

	user := &entities.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Verify returns the user owning email when password matches. Unknown emails
// and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Verify(email, password string) (*entities.User, error) {
	user, err := s.users.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// Spend the same bcrypt time as a real comparison.
			_ = CheckPassword(password, s.placeholderHash())
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, apperr.Storage("check password", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.users.GetUserByID(id)
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := HashPassword("placeholder-password", s.config.BcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
