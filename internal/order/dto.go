package order

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// CreateOrderItem is one requested line.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID string `json:"product"  binding:"required" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity" binding:"required,min=1" example:"20"`
}

// AddressInput shipping or billing address.
// swagger:model OrderAddressInput
type AddressInput struct {
	Street       string `json:"street"       binding:"required" example:"Plot 7, MIDC"`
	City         string `json:"city"         binding:"required" example:"Pune"`
	State        string `json:"state"        binding:"required" example:"Maharashtra"`
	Pincode      string `json:"pincode"      binding:"required,pincode" example:"411019"`
	Country      string `json:"country"      example:"India"`
	ContactName  string `json:"contactName"  binding:"required,max=100" example:"Ravi Kulkarni"`
	ContactPhone string `json:"contactPhone" binding:"required,inphone" example:"9822012345"`
}

// BillingAddressInput has no contact person.
// swagger:model BillingAddressInput
type BillingAddressInput struct {
	Street  string `json:"street"  binding:"required"`
	City    string `json:"city"    binding:"required"`
	State   string `json:"state"   binding:"required"`
	Pincode string `json:"pincode" binding:"required,pincode"`
	Country string `json:"country"`
}

// CreateOrderRequest payload of POST /api/orders.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Items           []CreateOrderItem    `json:"items"           binding:"required,min=1,dive"`
	ShippingAddress AddressInput         `json:"shippingAddress" binding:"required"`
	BillingAddress  *BillingAddressInput `json:"billingAddress"`
	Notes           string               `json:"notes"           binding:"max=500"`
}

// fingerprint is a digest of the request body, stored next to an
// Idempotency-Key so a replay can be told apart from a different order.
func (in CreateOrderRequest) fingerprint() string {
	raw, _ := json.Marshal(in)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// UpdateStatusRequest payload of PUT /api/orders/:id/status.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status            Status        `json:"status"            binding:"required,oneof=pending confirmed processing shipped delivered cancelled refunded" example:"shipped"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"     binding:"omitempty,oneof=pending paid failed refunded"`
	TrackingNumber    string        `json:"trackingNumber"    binding:"max=100" example:"BLR123456789"`
	EstimatedDelivery *time.Time    `json:"estimatedDelivery"`
	ActualDelivery    *time.Time    `json:"actualDelivery"`
	Notes             *string       `json:"notes"             binding:"omitempty,max=500"`
}

func country(c string) string {
	if c == "" {
		return "India"
	}
	return c
}

func (a AddressInput) toAddress() Address {
	return Address{
		Street:       a.Street,
		City:         a.City,
		State:        a.State,
		Pincode:      a.Pincode,
		Country:      country(a.Country),
		ContactName:  a.ContactName,
		ContactPhone: a.ContactPhone,
	}
}

func (a *BillingAddressInput) toAddress() *Address {
	if a == nil {
		return nil
	}
	return &Address{Street: a.Street, City: a.City, State: a.State, Pincode: a.Pincode, Country: country(a.Country)}
}
