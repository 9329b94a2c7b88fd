package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/repository"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// RegisterInput represents the input parameters for a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// Service is the user database.
// Passwords are stored as bcrypt hashes; Cost defaults to bcrypt.DefaultCost.
type Service struct {
	Repo repository.UserRepository
	Cost int
}

func (s *Service) hash(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func validatePassword(password string) error {
	if password == "" {
		return &entity.ValidationError{Field: "password", Message: "is required"}
	}
	if len(password) > maxPasswordBytes {
		return &entity.ValidationError{Field: "password", Message: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
	}
	return nil
}

func validateEmail(email string) error {
	if err := entity.Required("email", email); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &entity.ValidationError{Field: "email", Message: "is not a valid address"}
	}
	return nil
}

// Register creates a user. The username must be unused.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	username := strings.TrimSpace(in.Username)
	if err := entity.Required("username", username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{Username: username, Email: in.Email, PasswordHash: hash, Role: role}
	if err := s.Repo.Insert(ctx, u); err != nil {
		if errors.Is(err, entity.ErrAlreadyExists) {
			return nil, fmt.Errorf("register %q: %w", username, ErrUserExists)
		}
		return nil, fmt.Errorf("register %q: %w", username, err)
	}
	return u, nil
}

// GetByUsername looks a user up by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := s.Repo.Get(ctx, username)
	if err != nil {
		return nil, wrap("get user", err)
	}
	return u, nil
}

// List returns every user in registration order.
func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	us, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return us, nil
}

// UpdateEmail changes a user's email address.
func (s *Service) UpdateEmail(ctx context.Context, username, email string) (*entity.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	return s.modify(ctx, "update email", username, func(u *entity.User) { u.Email = email })
}

// UpdatePassword replaces a user's password.
func (s *Service) UpdatePassword(ctx context.Context, username, password string) (*entity.User, error) {
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, "update password", username, func(u *entity.User) { u.PasswordHash = hash })
}

// UpdateRole changes a user's role.
func (s *Service) UpdateRole(ctx context.Context, username, role string) (*entity.User, error) {
	r, err := entity.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, "update role", username, func(u *entity.User) { u.Role = r })
}

func (s *Service) modify(ctx context.Context, op, username string, fn func(*entity.User)) (*entity.User, error) {
	u, err := s.Repo.Modify(ctx, username, func(u *entity.User) error {
		fn(u)
		return nil
	})
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// dummyHash stands in for the stored hash of a missing account. It uses
// bcrypt.DefaultCost, the BCRYPT_COST default, so a miss costs about as much
// as a real comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("newsdesk-no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("user: dummy hash: %v", err))
	}
	return h
})

// CheckPassword reports whether password matches the user's stored hash.
// A nil user or an empty hash still pays for one bcrypt comparison, so the
// answer time does not reveal whether the account exists.
func CheckPassword(u *entity.User, password string) bool {
	if u == nil || u.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func wrap(op string, err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
