package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/apperr"
)

type Service struct {
	repo Repository
	log  *logrus.Logger
}

func NewService(repo Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates an active, unverified account. Admin accounts are
// provisioned out of band (cmd/migrate -admin-email).
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	if in.Role == RoleAdmin {
		return nil, apperr.Forbidden("Admin accounts cannot self-register")
	}
	email := NormalizeEmail(in.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("User already exists with this email")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Role:         in.Role,
		CompanyName:  strings.TrimSpace(in.CompanyName),
		GSTNumber:    in.GSTNumber,
		PANNumber:    in.PANNumber,
		Address:      in.Address.toAddress(),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			return nil, apperr.Validation("User already exists with this email")
		}
		return nil, apperr.Internal(err)
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	return u, nil
}

// Provision creates an account of any role, bypassing the self-registration
// guard. It is meant for operator tooling only.
func (s *Service) Provision(ctx context.Context, u *User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	u.PasswordHash = hash
	u.IsActive = true
	return s.repo.Create(ctx, u)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.Unauthenticated("Invalid email or password")
		}
		return nil, apperr.Internal(err)
	}
	if !u.IsActive {
		return nil, apperr.Unauthenticated("Account is deactivated")
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, apperr.Unauthenticated("Invalid email or password")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileRequest) (*User, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:          id,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Phone:       in.Phone,
		CompanyName: firstNonEmpty(strings.TrimSpace(in.CompanyName), cur.CompanyName),
		GSTNumber:   firstNonEmpty(in.GSTNumber, cur.GSTNumber),
		PANNumber:   firstNonEmpty(in.PANNumber, cur.PANNumber),
		Address:     cur.Address,
	}
	if in.Address != nil {
		u.Address = in.Address.toAddress()
	}
	if err := s.repo.Update(ctx, u, false); err != nil {
		return nil, apperr.Internal(err)
	}
	// Return the current state
	return s.Get(ctx, id)
}

func (s *Service) ChangePassword(ctx context.Context, id string, in ChangePasswordRequest) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CheckPassword(u.PasswordHash, in.CurrentPassword) {
		return apperr.Validation("Current password is incorrect")
	}
	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	u.PasswordHash = hash
	if err := s.repo.Update(ctx, u, true); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func firstNonEmpty(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
