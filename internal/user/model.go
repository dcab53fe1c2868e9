package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleContractor     Role = "contractor"
	RoleEngineer       Role = "engineer"
	RoleSupplier       Role = "supplier"
	RoleProjectManager Role = "project_manager"
	RoleAdmin          Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleContractor, RoleEngineer, RoleSupplier, RoleProjectManager, RoleAdmin:
		return true
	}
	return false
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	CompanyName  string    `json:"companyName,omitempty"`
	GSTNumber    string    `json:"gstNumber,omitempty"`
	PANNumber    string    `json:"panNumber,omitempty"`
	Address      Address   `json:"address"`
	IsVerified   bool      `json:"isVerified"`
	IsActive     bool      `json:"isActive"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lower-cases and trims an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
