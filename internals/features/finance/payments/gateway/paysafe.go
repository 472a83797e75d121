package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

/* =========================================================
   Paysafe REST client

   Thin JSON-over-HTTP client for the customer vault and
   card payments APIs. Responses carrying an "error" object
   are returned as business errors in the result; anything
   the API did not answer in a parseable way is a transport
   error.
========================================================= */

const (
	paysafeLiveURL = "https://api.paysafe.com"
	paysafeTestURL = "https://api.test.paysafe.com"
)

type Paysafe struct {
	acct    Account
	baseURL string
	http    *http.Client
}

// NewPaysafeFactory returns a Factory for the given environment
// ("LIVE" or "TEST").
func NewPaysafeFactory(environment string) Factory {
	base := paysafeTestURL
	if environment == "LIVE" {
		base = paysafeLiveURL
	}
	return func(acct Account) Client {
		return &Paysafe{
			acct:    acct,
			baseURL: base,
			http:    &http.Client{Timeout: 30 * time.Second},
		}
	}
}

type paysafeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *paysafeError) toBusiness() *Error {
	if e == nil || (e.Code == "" && e.Message == "") {
		return nil
	}
	return &Error{Code: e.Code, Message: e.Message}
}

func (p *Paysafe) CreateProfile(ctx context.Context, req CreateProfileRequest) (*CreateProfileResult, error) {
	body := map[string]interface{}{
		"merchantCustomerId": req.MerchantCustomerID,
		"locale":             req.Locale,
		"firstName":          req.FirstName,
		"lastName":           req.LastName,
		"gender":             req.Gender,
		"email":              req.Email,
	}
	if req.Phone != "" {
		body["phone"] = req.Phone
	}

	var resp struct {
		ID    string        `json:"id"`
		Error *paysafeError `json:"error"`
	}
	if err := p.do(ctx, http.MethodPost, "/customervault/v1/profiles", body, &resp); err != nil {
		return nil, err
	}
	return &CreateProfileResult{ID: resp.ID, Error: resp.Error.toBusiness()}, nil
}

func (p *Paysafe) CreateAddress(ctx context.Context, req CreateAddressRequest) (*CreateAddressResult, error) {
	body := map[string]interface{}{
		"street":  req.Street,
		"city":    req.City,
		"zip":     req.Zip,
		"country": req.Country,
	}
	if req.Street2 != "" {
		body["street2"] = req.Street2
	}
	if req.State != "" {
		body["state"] = req.State
	}
	if req.DefaultShipping {
		body["defaultShippingAddressIndicator"] = true
	}

	var resp struct {
		ID    string        `json:"id"`
		Error *paysafeError `json:"error"`
	}
	path := fmt.Sprintf("/customervault/v1/profiles/%s/addresses", req.ProfileID)
	if err := p.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &CreateAddressResult{ID: resp.ID, Error: resp.Error.toBusiness()}, nil
}

func (p *Paysafe) CreateCard(ctx context.Context, req CreateCardRequest) (*CreateCardResult, error) {
	body := map[string]interface{}{
		"cardNum": req.CardNum,
		"cardExpiry": map[string]int{
			"month": req.ExpiryMonth,
			"year":  req.ExpiryYear,
		},
	}

	var resp struct {
		ID           string        `json:"id"`
		PaymentToken string        `json:"paymentToken"`
		CardBin      string        `json:"cardBin"`
		LastDigits   string        `json:"lastDigits"`
		CardExpiry   *struct {
			Month int `json:"month"`
			Year  int `json:"year"`
		} `json:"cardExpiry"`
		Error *paysafeError `json:"error"`
	}
	path := fmt.Sprintf("/customervault/v1/profiles/%s/cards", req.ProfileID)
	if err := p.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	out := &CreateCardResult{
		ID:           resp.ID,
		PaymentToken: resp.PaymentToken,
		CardBin:      resp.CardBin,
		LastDigits:   resp.LastDigits,
		Error:        resp.Error.toBusiness(),
	}
	if resp.CardExpiry != nil {
		out.ExpiryMonth = resp.CardExpiry.Month
		out.ExpiryYear = resp.CardExpiry.Year
	}
	return out, nil
}

func (p *Paysafe) UpdateCard(ctx context.Context, req UpdateCardRequest) (*UpdateCardResult, error) {
	body := map[string]interface{}{
		"billingAddressId": req.BillingAddressID,
		"cardExpiry": map[string]int{
			"month": req.ExpiryMonth,
			"year":  req.ExpiryYear,
		},
	}

	var resp struct {
		Error *paysafeError `json:"error"`
	}
	path := fmt.Sprintf("/customervault/v1/profiles/%s/cards/%s", req.ProfileID, req.CardID)
	if err := p.do(ctx, http.MethodPut, path, body, &resp); err != nil {
		return nil, err
	}
	return &UpdateCardResult{Error: resp.Error.toBusiness()}, nil
}

func (p *Paysafe) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	body := map[string]interface{}{
		"merchantRefNum": req.MerchantRefNum,
		"card": map[string]string{
			"paymentToken": req.PaymentToken,
		},
	}

	var resp struct {
		ID     string        `json:"id"`
		Status string        `json:"status"`
		Error  *paysafeError `json:"error"`
	}
	path := fmt.Sprintf("/cardpayments/v1/accounts/%s/verifications", p.acct.AccountNumber)
	if err := p.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &VerifyResult{ID: resp.ID, Status: resp.Status, Error: resp.Error.toBusiness()}, nil
}

func (p *Paysafe) AuthorizeAndSettle(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	body := map[string]interface{}{
		"merchantRefNum": req.MerchantRefNum,
		"amount":         req.AmountMinor,
		"settleWithAuth": req.SettleWithAuth,
		"card": map[string]string{
			"paymentToken": req.PaymentToken,
		},
	}
	if req.Recurring != "" {
		body["recurring"] = req.Recurring
	}

	var resp struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		AuthCode    string `json:"authCode"`
		TxnTime     string `json:"txnTime"`
		Settlements []struct {
			ID string `json:"id"`
		} `json:"settlements"`
		Error *paysafeError `json:"error"`
	}
	path := fmt.Sprintf("/cardpayments/v1/accounts/%s/auths", p.acct.AccountNumber)
	raw, err := p.doRaw(ctx, http.MethodPost, path, body, &resp)
	if err != nil {
		return nil, err
	}

	out := &AuthorizeResult{
		ID:       resp.ID,
		Status:   resp.Status,
		AuthCode: resp.AuthCode,
		Error:    resp.Error.toBusiness(),
		Raw:      raw,
	}
	if len(resp.Settlements) > 0 {
		out.SettlementID = resp.Settlements[0].ID
	}
	if resp.TxnTime != "" {
		if t, perr := time.Parse(time.RFC3339, resp.TxnTime); perr == nil {
			out.TxnTime = t
		}
	}
	if out.TxnTime.IsZero() {
		out.TxnTime = time.Now()
	}
	return out, nil
}

func (p *Paysafe) do(ctx context.Context, method, path string, body, out interface{}) error {
	_, err := p.doRaw(ctx, method, path, body, out)
	return err
}

func (p *Paysafe) doRaw(ctx context.Context, method, path string, body, out interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.acct.APIKey, p.acct.APISecret)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paysafe %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paysafe %s %s: read body: %w", method, path, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("paysafe %s %s: status %d, unparseable body", method, path, resp.StatusCode)
	}
	return raw, nil
}
