// Package gateway is the HTTP client for the hosted payment page provider.
// Sessions are created with a form POST; completion signals are verified
// against the provider's validation endpoint before they count.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/shared"
)

const (
	sessionPath   = "/gwprocess/v4/api.php"
	validatorPath = "/validator/api/validationserverAPI.php"
)

var (
	errSessionRejected   = errs.New("gateway rejected session request")
	errUnexpectedAnswer  = errs.New("unexpected gateway response")
	errValidationRequest = errs.New("gateway validation request failed")
)

type Client struct {
	cfg  config.GatewayConfig
	http *http.Client
}

var _ commands.PaymentGateway = (*Client)(nil)

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type sessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func (c *Client) InitiateSession(ctx context.Context, req shared.GatewaySessionRequest) (*shared.GatewaySession, error) {
	form := url.Values{}
	form.Set("store_id", c.cfg.StoreID)
	form.Set("store_passwd", c.cfg.StorePassword)
	form.Set("tran_id", req.TransactionID)
	form.Set("total_amount", centsToAmount(req.AmountCents))
	form.Set("currency", req.Currency)
	form.Set("success_url", c.cfg.CallbackBaseURL+"/payment/success")
	form.Set("fail_url", c.cfg.CallbackBaseURL+"/payment/fail")
	form.Set("cancel_url", c.cfg.CallbackBaseURL+"/payment/cancel")
	form.Set("ipn_url", c.cfg.CallbackBaseURL+"/payment/ipn")
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("cus_add1", req.ShippingAddress)
	form.Set("cus_city", req.ShippingCity)
	form.Set("cus_postcode", req.ShippingPostcode)
	form.Set("cus_country", req.ShippingCountry)
	form.Set("shipping_method", "Courier")
	form.Set("ship_name", req.CustomerName)
	form.Set("ship_add1", req.ShippingAddress)
	form.Set("ship_city", req.ShippingCity)
	form.Set("ship_postcode", req.ShippingPostcode)
	form.Set("ship_country", req.ShippingCountry)
	form.Set("num_of_item", strconv.FormatInt(int64(req.NumItems), 10))
	form.Set("product_name", "Order "+req.TransactionID)
	form.Set("product_category", "General")
	form.Set("product_profile", "physical-goods")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL()+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build session request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var parsed sessionResponse
	if err := c.do(httpReq, &parsed); err != nil {
		return nil, err
	}

	if !strings.EqualFold(parsed.Status, "SUCCESS") {
		return nil, errs.Wrap(errSessionRejected, parsed.FailedReason)
	}
	if parsed.GatewayPageURL == "" {
		return nil, errs.Wrap(errUnexpectedAnswer, "session accepted without redirect url")
	}

	return &shared.GatewaySession{
		RedirectURL: parsed.GatewayPageURL,
		SessionKey:  parsed.SessionKey,
	}, nil
}

type validationResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"tran_id"`
	ValID         string `json:"val_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

func (c *Client) ValidatePayment(ctx context.Context, valID string) (*shared.GatewayValidation, error) {
	if valID == "" {
		return nil, errs.Wrap(errValidationRequest, "val_id is blank")
	}

	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", c.cfg.StoreID)
	q.Set("store_passwd", c.cfg.StorePassword)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL()+validatorPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build validation request")
	}

	var parsed validationResponse
	if err := c.do(httpReq, &parsed); err != nil {
		return nil, err
	}

	status := strings.ToUpper(parsed.Status)

	// Only a settled payment is required to carry an amount; failed or
	// cancelled transactions may answer without one.
	var amountCents int64
	if parsed.Amount != "" {
		amountCents, err = amountToCents(parsed.Amount)
		if err != nil && (status == "VALID" || status == "VALIDATED") {
			return nil, errs.Wrap(errUnexpectedAnswer, fmt.Sprintf("unparseable amount %q", parsed.Amount))
		}
	}

	return &shared.GatewayValidation{
		Status:        status,
		TransactionID: parsed.TransactionID,
		ValID:         parsed.ValID,
		AmountCents:   amountCents,
		Currency:      parsed.Currency,
	}, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(err, "gateway request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errs.Wrap(err, "failed to read gateway response")
	}
	if resp.StatusCode != http.StatusOK {
		return errs.Wrap(errUnexpectedAnswer, fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.Wrap(errUnexpectedAnswer, "gateway response is not valid json")
	}
	return nil
}

// The provider speaks decimal amounts; everything internal is cents.
func centsToAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

func amountToCents(amount string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}
