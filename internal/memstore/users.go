package memstore

import (
	"context"

	"github.com/MikeMC777/construmarket/internal/user"
)

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, cur := range r.s.users {
		if cur.Email == u.Email {
			return user.ErrAlreadyExist
		}
	}
	if _, ok := r.s.users[u.ID]; ok {
		return user.ErrAlreadyExist
	}
	now := r.s.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepo) Update(_ context.Context, u *user.User, updatePassword bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	if updatePassword {
		cur.PasswordHash = u.PasswordHash
	} else {
		if u.FirstName != "" {
			cur.FirstName = u.FirstName
		}
		if u.LastName != "" {
			cur.LastName = u.LastName
		}
		if u.Phone != "" {
			cur.Phone = u.Phone
		}
		cur.CompanyName = u.CompanyName
		cur.GSTNumber = u.GSTNumber
		cur.PANNumber = u.PANNumber
		cur.Address = u.Address
	}
	cur.UpdatedAt = r.s.now().UTC()
	return nil
}

// SetActive flips the active flag. Tests use it to simulate deactivated
// accounts; there is no API for it.
func (r *UserRepo) SetActive(id string, active bool) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.IsActive = active
	}
}
