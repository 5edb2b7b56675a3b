package api

import (
	"errors"
	"net/http"
	"strconv"

	"commerce-core/internal/domain/coupon"
	"commerce-core/internal/domain/order"
	reqdto "commerce-core/internal/handler/dto/request"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/handler/middleware"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderCommands   commands.OrderCommands
	orderQueries    queries.OrderQueries
	deliveryQueries queries.DeliveryQueries
}

func NewOrderHandler(
	orderCommands commands.OrderCommands,
	orderQueries queries.OrderQueries,
	deliveryQueries queries.DeliveryQueries,
) *OrderHandler {
	return &OrderHandler{
		orderCommands:   orderCommands,
		orderQueries:    orderQueries,
		deliveryQueries: deliveryQueries,
	}
}

// @Summary Create order
// @Description Assemble an order from the shopper's cart: reserve stock, apply coupon, persist, and for gateway payment open a hosted payment session
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateOrderRequest true "Order request"
// @Success 201 {object} resdto.CreateOrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /order/create-order [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr,
			"INVALID_REQUEST", "Invalid request format", nil)
		return
	}

	params := commands.CreateOrderParams{
		Owner:           owner,
		CouponCode:      req.CouponCode,
		PaymentMethod:   order.PaymentMethod(req.PaymentMethod),
		DeliveryZoneID:  req.DeliveryZoneID,
		ShippingAddress: toAddress(req.ShippingAddress),
		BillingAddress:  toAddress(req.Billing()),
	}

	result, err := h.orderCommands.CreateOrder(c.Request.Context(), params)
	if err != nil {
		h.abortCreateOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCreateOrderResult(result))
}

func (h *OrderHandler) abortCreateOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrCartNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"CART_NOT_FOUND", "Cart is empty or does not exist", nil)
	case errors.Is(err, commands.ErrCouponNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"COUPON_NOT_FOUND", "Coupon not found", nil)
	case errors.Is(err, commands.ErrDeliveryChargeNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"DELIVERY_ZONE_NOT_FOUND", "Delivery zone is not serviceable", nil)
	case errors.Is(err, commands.ErrInsufficientStock):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			"INSUFFICIENT_STOCK", "One or more items are out of stock", nil)
	case errors.Is(err, commands.ErrCouponIneligible):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			"COUPON_INELIGIBLE", "Coupon cannot be applied to this order", couponRejection(err))
	case errors.Is(err, commands.ErrGatewayUnavailable):
		httperr.AbortWithError(c, http.StatusBadGateway, err,
			"GATEWAY_UNAVAILABLE", "Payment gateway is unavailable", nil)
	case errors.Is(err, commands.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"VALIDATION_FAILED", "Order request failed validation", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			"INTERNAL", "Internal server error", nil)
	}
}

// @Summary Get order
// @Description Get one of the shopper's own orders with line items and invoice
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /order/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"INVALID_REQUEST", "Invalid order ID format", nil)
		return
	}

	view, err := h.orderQueries.GetByID(c.Request.Context(), id, owner)
	if err != nil {
		h.abortOrderLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary Get order by number
// @Description Look up one of the shopper's own orders by its order number
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param number path string true "Order number"
// @Success 200 {object} resdto.OrderResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /order/by-number/{number} [get]
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	view, err := h.orderQueries.GetByNumber(c.Request.Context(), c.Param("number"), owner)
	if err != nil {
		h.abortOrderLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

func (h *OrderHandler) abortOrderLookupError(c *gin.Context, err error) {
	if errors.Is(err, queries.ErrOrderNotFound) {
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"ORDER_NOT_FOUND", "Order not found", nil)
		return
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err,
		"INTERNAL", "Internal server error", nil)
}

// @Summary List my orders
// @Description List the shopper's orders, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} resdto.OrderSummaryResponse
// @Failure 401 {object} httperr.Response
// @Router /order/list [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	owner, ok := middleware.GetOwner(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	page := queries.PageRequest{
		Limit:  int32(queryInt(c, "limit")),
		Offset: int32(queryInt(c, "offset")),
	}

	views, err := h.orderQueries.ListByOwner(c.Request.Context(), owner, page)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			"INTERNAL", "Internal server error", nil)
		return
	}

	response := make([]*resdto.OrderSummaryResponse, len(views))
	for i := range views {
		response[i] = resdto.FromOrderSummaryView(&views[i])
	}
	c.JSON(http.StatusOK, response)
}

// @Summary List delivery zones
// @Description List serviceable delivery zones with their flat charges
// @Tags orders
// @Produce json
// @Success 200 {array} resdto.DeliveryZoneResponse
// @Router /delivery-zones [get]
func (h *OrderHandler) ListDeliveryZones(c *gin.Context) {
	zones, err := h.deliveryQueries.ListZones(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			"INTERNAL", "Internal server error", nil)
		return
	}

	response := make([]*resdto.DeliveryZoneResponse, len(zones))
	for i := range zones {
		response[i] = resdto.FromDeliveryZoneView(&zones[i])
	}
	c.JSON(http.StatusOK, response)
}

func toAddress(a reqdto.AddressPayload) order.Address {
	return order.Address{
		Name:     a.Name,
		Phone:    a.Phone,
		Email:    a.Email,
		Line1:    a.Line1,
		Line2:    a.Line2,
		City:     a.City,
		Postcode: a.Postcode,
		Country:  a.Country,
	}
}

// couponRejection surfaces the evaluator's sub-reason so the storefront can
// show a precise message.
func couponRejection(err error) any {
	checks := []struct {
		target error
		reason string
	}{
		{coupon.ErrInactive, "INACTIVE"},
		{coupon.ErrNotYetValid, "NOT_YET_VALID"},
		{coupon.ErrExpired, "EXPIRED"},
		{coupon.ErrBelowMinPurchase, "BELOW_MIN_PURCHASE"},
		{coupon.ErrUsageCapReached, "USAGE_CAP_REACHED"},
		{coupon.ErrUserCapReached, "USER_CAP_REACHED"},
		{coupon.ErrNotApplicable, "NOT_APPLICABLE"},
	}
	for _, check := range checks {
		if errors.Is(err, check.target) {
			return gin.H{"reason": check.reason}
		}
	}
	return nil
}

func queryInt(c *gin.Context, key string) int {
	v := c.Query(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
