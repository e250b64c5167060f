package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Payment methods accepted by initiate-payment.
const (
	PaymentBankTransfer   = "bank_transfer"
	PaymentOnlineCheckout = "online_checkout"
)

// WalletBalance fetches the balance of an organization's wallet. A wallet
// that does not exist yet answers 404 (see IsNotFound).
func (c *Client) WalletBalance(ctx context.Context, orgID string) (string, error) {
	var out Balance
	path := "/wallet/balance/" + url.PathEscape(orgID) + "/"
	if err := c.do(ctx, http.MethodGet, path, "/wallet/balance/{id}/", nil, nil, &out); err != nil {
		return "", err
	}
	return out.Balance, nil
}

// CreateWallet provisions a wallet for an organization.
func (c *Client) CreateWallet(ctx context.Context, orgID string) error {
	body := map[string]string{"organization_id": orgID}
	return c.do(ctx, http.MethodPost, "/wallet/create/", "", nil, body, nil)
}

// InitiatePayment lists the payment options for funding a wallet with amount
// using method. Validation of amount and method belongs to the caller.
func (c *Client) InitiatePayment(ctx context.Context, orgID, method string, amount float64) ([]PaymentOption, error) {
	var out []PaymentOption
	path := "/wallet/initiate-payment/" + url.PathEscape(orgID)
	q := url.Values{
		"payment_option": {method},
		"amount":         {strconv.FormatFloat(amount, 'f', -1, 64)},
	}
	if err := c.do(ctx, http.MethodGet, path, "/wallet/initiate-payment/{id}", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
