package response

import (
	"time"

	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CreateOrderResponse struct {
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod"`
	TotalCents    int64     `json:"totalCents"`
	DiscountCents int64     `json:"discountCents"`
	ShippingCents int64     `json:"shippingCents"`
	TaxCents      int64     `json:"taxCents"`
	FinalCents    int64     `json:"finalCents"`
	RedirectURL   *string   `json:"redirectUrl,omitempty"`
}

func FromCreateOrderResult(r *commands.CreateOrderResult) *CreateOrderResponse {
	return &CreateOrderResponse{
		OrderID:       r.OrderID,
		OrderNumber:   r.OrderNumber,
		TransactionID: r.TransactionID,
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		PaymentMethod: string(r.PaymentMethod),
		TotalCents:    r.Amounts.TotalCents,
		DiscountCents: r.Amounts.DiscountCents,
		ShippingCents: r.Amounts.ShippingCents,
		TaxCents:      r.Amounts.TaxCents,
		FinalCents:    r.Amounts.FinalCents(),
		RedirectURL:   r.RedirectURL,
	}
}

type OrderLineResponse struct {
	ProductID      uuid.UUID  `json:"productId"`
	VariantID      *uuid.UUID `json:"variantId,omitempty"`
	ProductName    string     `json:"productName"`
	SKUCode        string     `json:"skuCode"`
	Size           string     `json:"size,omitempty"`
	Color          string     `json:"color,omitempty"`
	Quantity       int32      `json:"quantity"`
	UnitPriceCents int64      `json:"unitPriceCents"`
	TotalCents     int64      `json:"totalCents"`
}

type AddressResponse struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
}

type InvoiceResponse struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amountCents"`
	IssuedAt    time.Time `json:"issuedAt"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	PaymentMethod   string              `json:"paymentMethod"`
	TransactionID   string              `json:"transactionId"`
	TotalCents      int64               `json:"totalCents"`
	DiscountCents   int64               `json:"discountCents"`
	ShippingCents   int64               `json:"shippingCents"`
	TaxCents        int64               `json:"taxCents"`
	FinalCents      int64               `json:"finalCents"`
	Lines           []OrderLineResponse `json:"lines"`
	ShippingAddress AddressResponse     `json:"shippingAddress"`
	BillingAddress  AddressResponse     `json:"billingAddress"`
	Invoice         *InvoiceResponse    `json:"invoice,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

func FromOrderView(v *queries.OrderView) *OrderResponse {
	resp := &OrderResponse{
		ID:            v.ID,
		OrderNumber:   v.OrderNumber,
		Status:        string(v.Status),
		PaymentStatus: string(v.PaymentStatus),
		PaymentMethod: string(v.PaymentMethod),
		TransactionID: v.TransactionID,
		TotalCents:    v.TotalCents,
		DiscountCents: v.DiscountCents,
		ShippingCents: v.ShippingCents,
		TaxCents:      v.TaxCents,
		FinalCents:    v.FinalCents,
		CreatedAt:     v.CreatedAt,
	}
	_ = copier.Copy(&resp.Lines, v.Lines)
	_ = copier.Copy(&resp.ShippingAddress, v.ShippingAddress)
	_ = copier.Copy(&resp.BillingAddress, v.BillingAddress)

	if v.Invoice != nil {
		resp.Invoice = &InvoiceResponse{
			ID:          v.Invoice.ID,
			Status:      string(v.Invoice.Status),
			AmountCents: v.Invoice.AmountCents,
			IssuedAt:    v.Invoice.IssuedAt,
		}
	}
	return resp
}

type OrderSummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"orderNumber"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod"`
	FinalCents    int64     `json:"finalCents"`
	LineCount     int32     `json:"lineCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromOrderSummaryView(v *queries.OrderSummaryView) *OrderSummaryResponse {
	return &OrderSummaryResponse{
		ID:            v.ID,
		OrderNumber:   v.OrderNumber,
		Status:        string(v.Status),
		PaymentStatus: string(v.PaymentStatus),
		PaymentMethod: string(v.PaymentMethod),
		FinalCents:    v.FinalCents,
		LineCount:     v.LineCount,
		CreatedAt:     v.CreatedAt,
	}
}

type DeliveryZoneResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ChargeCents int64     `json:"chargeCents"`
}

func FromDeliveryZoneView(v *queries.DeliveryZoneView) *DeliveryZoneResponse {
	return &DeliveryZoneResponse{
		ID:          v.ID,
		Name:        v.Name,
		ChargeCents: v.ChargeCents,
	}
}
