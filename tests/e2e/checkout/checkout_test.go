//go:build e2e

package checkout

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/tests/common/dbtest"
	"commerce-core/tests/common/httptest"
	"commerce-core/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type CheckoutE2ETestSuite struct {
	e2e.SharedSuite
}

func TestCheckoutE2ESuite(t *testing.T) {
	suite.Run(t, new(CheckoutE2ETestSuite))
}

func (s *CheckoutE2ETestSuite) createOrderBody(zoneID uuid.UUID, method string) map[string]any {
	return map[string]any{
		"paymentMethod":  method,
		"deliveryZoneId": zoneID.String(),
		"shippingAddress": map[string]any{
			"name":     "Test Customer",
			"phone":    "+8801700000000",
			"email":    "customer@example.com",
			"line1":    "House 1, Road 1",
			"city":     "Dhaka",
			"postcode": "1212",
			"country":  "Bangladesh",
		},
	}
}

func (s *CheckoutE2ETestSuite) productStock(productID uuid.UUID) int32 {
	var stock int32
	err := s.DB.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	s.Require().NoError(err)
	return stock
}

func (s *CheckoutE2ETestSuite) cartItemCount(guestID string) int {
	var count int
	err := s.DB.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.guest_id = $1`, guestID).Scan(&count)
	s.Require().NoError(err)
	return count
}

func (s *CheckoutE2ETestSuite) orderState(transactionID string) (status, paymentStatus string) {
	err := s.DB.QueryRow(context.Background(),
		`SELECT status, payment_status FROM orders WHERE transaction_id = $1`,
		transactionID).Scan(&status, &paymentStatus)
	s.Require().NoError(err)
	return status, paymentStatus
}

func (s *CheckoutE2ETestSuite) TestCheckout() {
	s.Run("COD order reserves stock, issues invoice, and clears the cart", func() {
		productID := dbtest.CreateTestProduct(s.T(), s.DB, "Leather Wallet", 10000, 5)
		dbtest.CreateGuestCart(s.T(), s.DB, "guest-cod", productID, 2)
		zoneID := dbtest.DeliveryZoneID(s.T(), s.DB, "Inside Dhaka")

		rec := httptest.PerformGuestRequest(s.T(), s.Router, http.MethodPost,
			"/order/create-order", s.createOrderBody(zoneID, "COD"), "guest-cod")

		var response resdto.CreateOrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal("COD", response.PaymentMethod)
		s.Equal(int64(26000), response.FinalCents)
		s.Nil(response.RedirectURL)

		s.Equal(int32(3), s.productStock(productID))
		s.Equal(0, s.cartItemCount("guest-cod"))

		var invoiceStatus string
		err := s.DB.QueryRow(context.Background(), `
			SELECT i.status FROM invoices i
			JOIN orders o ON o.id = i.order_id
			WHERE o.transaction_id = $1`, response.TransactionID).Scan(&invoiceStatus)
		s.Require().NoError(err)
		s.Equal("UNPAID", invoiceStatus)
	})

	s.Run("insufficient stock rejects the order and leaves counters alone", func() {
		productID := dbtest.CreateTestProduct(s.T(), s.DB, "Limited Run", 10000, 1)
		dbtest.CreateGuestCart(s.T(), s.DB, "guest-short", productID, 2)
		zoneID := dbtest.DeliveryZoneID(s.T(), s.DB, "Inside Dhaka")

		rec := httptest.PerformGuestRequest(s.T(), s.Router, http.MethodPost,
			"/order/create-order", s.createOrderBody(zoneID, "COD"), "guest-short")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK")
		s.Equal(int32(1), s.productStock(productID))
		s.Equal(1, s.cartItemCount("guest-short"))
	})

	s.Run("gateway order opens a session and keeps the cart until payment", func() {
		productID := dbtest.CreateTestProduct(s.T(), s.DB, "Leather Wallet", 10000, 5)
		dbtest.CreateGuestCart(s.T(), s.DB, "guest-gw", productID, 2)
		zoneID := dbtest.DeliveryZoneID(s.T(), s.DB, "Inside Dhaka")

		rec := httptest.PerformGuestRequest(s.T(), s.Router, http.MethodPost,
			"/order/create-order", s.createOrderBody(zoneID, "GATEWAY"), "guest-gw")

		var response resdto.CreateOrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Require().NotNil(response.RedirectURL)
		s.Contains(*response.RedirectURL, "/checkout/")

		s.Equal(int32(3), s.productStock(productID))
		s.Equal(1, s.cartItemCount("guest-gw"))
	})

	s.Run("success callback validates, completes, and replays duplicates", func() {
		productID := dbtest.CreateTestProduct(s.T(), s.DB, "Leather Wallet", 10000, 5)
		dbtest.CreateGuestCart(s.T(), s.DB, "guest-pay", productID, 2)
		zoneID := dbtest.DeliveryZoneID(s.T(), s.DB, "Inside Dhaka")

		rec := httptest.PerformGuestRequest(s.T(), s.Router, http.MethodPost,
			"/order/create-order", s.createOrderBody(zoneID, "GATEWAY"), "guest-pay")
		var created resdto.CreateOrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &created)

		form := url.Values{}
		form.Set("tran_id", created.TransactionID)
		form.Set("val_id", s.Gateway.ValID(created.TransactionID))

		rec = httptest.PerformFormRequest(s.T(), s.Router, "/payment/success", form)

		var reconciled resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &reconciled)
		s.Equal("COMPLETED", reconciled.PaymentStatus)
		s.False(reconciled.Replayed)

		status, paymentStatus := s.orderState(created.TransactionID)
		s.Equal("CONFIRMED", status)
		s.Equal("COMPLETED", paymentStatus)
		s.Equal(0, s.cartItemCount("guest-pay"))

		var invoiceStatus string
		err := s.DB.QueryRow(context.Background(),
			`SELECT status FROM invoices WHERE order_id = $1`, created.OrderID).Scan(&invoiceStatus)
		s.Require().NoError(err)
		s.Equal("PAID", invoiceStatus)

		var jobCount int
		err = s.DB.QueryRow(context.Background(),
			`SELECT COUNT(*) FROM notification_jobs WHERE topic = $1`, created.OrderNumber).Scan(&jobCount)
		s.Require().NoError(err)
		s.Equal(1, jobCount)

		// duplicate signal replays without writing
		rec = httptest.PerformFormRequest(s.T(), s.Router, "/payment/success", form)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &reconciled)
		s.True(reconciled.Replayed)

		// conflicting signal after completion is rejected
		s.Gateway.ValidationStatus = "CANCELLED"
		defer func() { s.Gateway.ValidationStatus = "VALID" }()

		cancelForm := url.Values{}
		cancelForm.Set("tran_id", created.TransactionID)
		cancelForm.Set("val_id", s.Gateway.ValID(created.TransactionID))
		rec = httptest.PerformFormRequest(s.T(), s.Router, "/payment/cancel", cancelForm)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "RECONCILIATION_CONFLICT")
	})

	s.Run("fail callback cancels the order but keeps reserved stock", func() {
		productID := dbtest.CreateTestProduct(s.T(), s.DB, "Leather Wallet", 10000, 5)
		dbtest.CreateGuestCart(s.T(), s.DB, "guest-fail", productID, 2)
		zoneID := dbtest.DeliveryZoneID(s.T(), s.DB, "Inside Dhaka")

		rec := httptest.PerformGuestRequest(s.T(), s.Router, http.MethodPost,
			"/order/create-order", s.createOrderBody(zoneID, "GATEWAY"), "guest-fail")
		var created resdto.CreateOrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &created)

		s.Gateway.ValidationStatus = "FAILED"
		defer func() { s.Gateway.ValidationStatus = "VALID" }()

		form := url.Values{}
		form.Set("tran_id", created.TransactionID)
		form.Set("val_id", s.Gateway.ValID(created.TransactionID))
		rec = httptest.PerformFormRequest(s.T(), s.Router, "/payment/fail", form)

		var reconciled resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &reconciled)
		s.Equal("FAILED", reconciled.PaymentStatus)

		status, paymentStatus := s.orderState(created.TransactionID)
		s.Equal("CANCELLED", status)
		s.Equal("FAILED", paymentStatus)

		// stock stays reserved until a manual back-office restock
		s.Equal(int32(3), s.productStock(productID))
		s.Equal(1, s.cartItemCount("guest-fail"))
	})

	s.Run("fail callback the gateway does not confirm leaves the order pending", func() {
		productID := dbtest.CreateTestProduct(s.T(), s.DB, "Leather Wallet", 10000, 5)
		dbtest.CreateGuestCart(s.T(), s.DB, "guest-forge", productID, 2)
		zoneID := dbtest.DeliveryZoneID(s.T(), s.DB, "Inside Dhaka")

		rec := httptest.PerformGuestRequest(s.T(), s.Router, http.MethodPost,
			"/order/create-order", s.createOrderBody(zoneID, "GATEWAY"), "guest-forge")
		var created resdto.CreateOrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &created)

		// the stub still reports this transaction VALID, so a fail signal
		// carrying its tran_id must not settle anything
		form := url.Values{}
		form.Set("tran_id", created.TransactionID)
		form.Set("val_id", s.Gateway.ValID(created.TransactionID))
		rec = httptest.PerformFormRequest(s.T(), s.Router, "/payment/fail", form)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "GATEWAY_VALIDATION_REJECTED")

		status, paymentStatus := s.orderState(created.TransactionID)
		s.Equal("PENDING", status)
		s.Equal("PENDING", paymentStatus)
	})

	s.Run("IPN settles an order no browser ever came back for", func() {
		productID := dbtest.CreateTestProduct(s.T(), s.DB, "Leather Wallet", 10000, 5)
		dbtest.CreateGuestCart(s.T(), s.DB, "guest-ipn", productID, 2)
		zoneID := dbtest.DeliveryZoneID(s.T(), s.DB, "Inside Dhaka")

		rec := httptest.PerformGuestRequest(s.T(), s.Router, http.MethodPost,
			"/order/create-order", s.createOrderBody(zoneID, "GATEWAY"), "guest-ipn")
		var created resdto.CreateOrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &created)

		form := url.Values{}
		form.Set("tran_id", created.TransactionID)
		form.Set("status", "VALID")
		form.Set("val_id", s.Gateway.ValID(created.TransactionID))
		rec = httptest.PerformFormRequest(s.T(), s.Router, "/payment/ipn", form)

		var reconciled resdto.ReconcileResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &reconciled)
		s.Equal("COMPLETED", reconciled.PaymentStatus)

		status, paymentStatus := s.orderState(created.TransactionID)
		s.Equal("CONFIRMED", status)
		s.Equal("COMPLETED", paymentStatus)
	})

	s.Run("order detail and history are readable after checkout", func() {
		productID := dbtest.CreateTestProduct(s.T(), s.DB, "Leather Wallet", 10000, 5)
		dbtest.CreateGuestCart(s.T(), s.DB, "guest-read", productID, 1)
		zoneID := dbtest.DeliveryZoneID(s.T(), s.DB, "Inside Dhaka")

		rec := httptest.PerformGuestRequest(s.T(), s.Router, http.MethodPost,
			"/order/create-order", s.createOrderBody(zoneID, "COD"), "guest-read")
		var created resdto.CreateOrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &created)

		rec = httptest.PerformGuestRequest(s.T(), s.Router, http.MethodGet,
			"/order/"+created.OrderID.String(), nil, "guest-read")
		var detail resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &detail)
		s.Equal(created.OrderNumber, detail.OrderNumber)
		s.Len(detail.Lines, 1)
		s.Require().NotNil(detail.Invoice)
		s.Equal("UNPAID", detail.Invoice.Status)

		rec = httptest.PerformGuestRequest(s.T(), s.Router, http.MethodGet,
			"/order/by-number/"+created.OrderNumber, nil, "guest-read")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &detail)
		s.Equal(created.OrderID, detail.ID)

		rec = httptest.PerformGuestRequest(s.T(), s.Router, http.MethodGet,
			"/order/list", nil, "guest-read")
		var list []resdto.OrderSummaryResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &list)
		s.Len(list, 1)
		s.Equal(created.OrderNumber, list[0].OrderNumber)

		// another shopper holding the id or number sees nothing
		rec = httptest.PerformGuestRequest(s.T(), s.Router, http.MethodGet,
			"/order/"+created.OrderID.String(), nil, "guest-other")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "ORDER_NOT_FOUND")

		rec = httptest.PerformGuestRequest(s.T(), s.Router, http.MethodGet,
			"/order/by-number/"+created.OrderNumber, nil, "guest-other")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "ORDER_NOT_FOUND")
	})

	s.Run("unknown transaction in callback returns 404", func() {
		form := url.Values{}
		form.Set("tran_id", "ffffffffffffffffffffffffffffffff")
		form.Set("val_id", "VAL-ffffffffffffffffffffffffffffffff")
		rec := httptest.PerformFormRequest(s.T(), s.Router, "/payment/success", form)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "ORDER_NOT_FOUND")
	})
}
