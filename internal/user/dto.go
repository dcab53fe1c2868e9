package user

// AddressInput is a postal address sent by the client.
// swagger:model AddressInput
type AddressInput struct {
	Street  string `json:"street"  binding:"required" example:"12 MG Road"`
	City    string `json:"city"    binding:"required" example:"Pune"`
	State   string `json:"state"   binding:"required" example:"Maharashtra"`
	Pincode string `json:"pincode" binding:"required,pincode" example:"411001"`
	Country string `json:"country" example:"India"`
}

func (a AddressInput) toAddress() Address {
	country := a.Country
	if country == "" {
		country = "India"
	}
	return Address{Street: a.Street, City: a.City, State: a.State, Pincode: a.Pincode, Country: country}
}

// RegisterRequest payload for POST /api/auth/register.
// swagger:model RegisterRequest
type RegisterRequest struct {
	FirstName   string       `json:"firstName"   binding:"required,max=50" example:"Asha"`
	LastName    string       `json:"lastName"    binding:"required,max=50" example:"Patil"`
	Email       string       `json:"email"       binding:"required,email" example:"asha@example.com"`
	Password    string       `json:"password"    binding:"required,min=8" example:"s3cretpass"`
	Phone       string       `json:"phone"       binding:"required,inphone" example:"9876543210"`
	Role        Role         `json:"role"        binding:"required,oneof=contractor engineer supplier project_manager admin" example:"contractor"`
	CompanyName string       `json:"companyName" binding:"max=100"`
	GSTNumber   string       `json:"gstNumber"   binding:"omitempty,gst"`
	PANNumber   string       `json:"panNumber"   binding:"omitempty,pan"`
	Address     AddressInput `json:"address"     binding:"required"`
}

// LoginRequest payload for POST /api/auth/login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest payload for PUT /api/auth/profile. Empty names and
// phone keep their stored values.
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	FirstName   string        `json:"firstName"   binding:"max=50"`
	LastName    string        `json:"lastName"    binding:"max=50"`
	Phone       string        `json:"phone"       binding:"omitempty,inphone"`
	CompanyName string        `json:"companyName" binding:"max=100"`
	GSTNumber   string        `json:"gstNumber"   binding:"omitempty,gst"`
	PANNumber   string        `json:"panNumber"   binding:"omitempty,pan"`
	Address     *AddressInput `json:"address"`
}

// ChangePasswordRequest payload for PUT /api/auth/change-password.
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required,min=8"`
}
