package request

import (
	"github.com/google/uuid"
)

type AddressPayload struct {
	Name     string `json:"name" binding:"required,max=120"`
	Phone    string `json:"phone" binding:"required,max=32"`
	Email    string `json:"email" binding:"omitempty,email,max=254"`
	Line1    string `json:"line1" binding:"required,max=200"`
	Line2    string `json:"line2" binding:"omitempty,max=200"`
	City     string `json:"city" binding:"required,max=100"`
	Postcode string `json:"postcode" binding:"required,max=20"`
	Country  string `json:"country" binding:"required,max=80"`
}

type CreateOrderRequest struct {
	PaymentMethod   string          `json:"paymentMethod" binding:"required,oneof=COD GATEWAY"`
	DeliveryZoneID  uuid.UUID       `json:"deliveryZoneId" binding:"required"`
	CouponCode      *string         `json:"couponCode" binding:"omitempty,min=3,max=20"`
	ShippingAddress AddressPayload  `json:"shippingAddress" binding:"required"`
	BillingAddress  *AddressPayload `json:"billingAddress" binding:"omitempty"`
}

// Billing falls back to the shipping address when the payload omits it.
func (r *CreateOrderRequest) Billing() AddressPayload {
	if r.BillingAddress != nil {
		return *r.BillingAddress
	}
	return r.ShippingAddress
}
