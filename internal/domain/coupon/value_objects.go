package coupon

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCouponCode      = errors.New("invalid coupon code format")
	ErrInvalidDiscountAmount  = errors.New("discount amount cannot be negative")
	ErrInvalidDiscountPercent = errors.New("percentage discount must be between 0 and 100")
	ErrInvalidDiscountCap     = errors.New("discount cap cannot be negative")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

// Discount is either a fixed amount or a percentage with an optional cap.
type Discount struct {
	amountOffCents *int64
	percentOff     *float64
	maxOffCents    *int64
}

func NewFixedDiscount(amountOffCents int64) (Discount, error) {
	if amountOffCents < 0 {
		return Discount{}, ErrInvalidDiscountAmount
	}
	return Discount{amountOffCents: &amountOffCents}, nil
}

func NewPercentageDiscount(percentOff float64, maxOffCents *int64) (Discount, error) {
	if percentOff < 0 || percentOff > 100 {
		return Discount{}, ErrInvalidDiscountPercent
	}
	if maxOffCents != nil && *maxOffCents < 0 {
		return Discount{}, ErrInvalidDiscountCap
	}
	return Discount{percentOff: &percentOff, maxOffCents: maxOffCents}, nil
}

func NewDiscount(amountOffCents *int64, percentOff *float64, maxOffCents *int64) (Discount, error) {
	if amountOffCents != nil && percentOff != nil {
		return Discount{}, errors.New("discount can only be either fixed amount or percentage, not both")
	}

	if amountOffCents == nil && percentOff == nil {
		return Discount{}, errors.New("discount must have either fixed amount or percentage")
	}

	if amountOffCents != nil {
		return NewFixedDiscount(*amountOffCents)
	}

	return NewPercentageDiscount(*percentOff, maxOffCents)
}

func (d Discount) IsPercentage() bool {
	return d.percentOff != nil
}

func (d Discount) IsFixed() bool {
	return d.amountOffCents != nil
}

// AmountFor computes the discount in cents for a given subtotal.
// Percentage discounts are clamped to the cap when one is set; fixed
// discounts are clamped to the subtotal so the final amount never goes
// negative. The result is always >= 0.
func (d Discount) AmountFor(subtotalCents int64) int64 {
	var amount int64
	switch {
	case d.IsPercentage():
		amount = int64(float64(subtotalCents) * (*d.percentOff / 100.0))
		if d.maxOffCents != nil && amount > *d.maxOffCents {
			amount = *d.maxOffCents
		}
	case d.IsFixed():
		amount = *d.amountOffCents
	}

	if amount > subtotalCents {
		amount = subtotalCents
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}
