package momo

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// partyIDTypeMSISDN is the only party identifier type used by this package:
// a mobile subscriber number.
const partyIDTypeMSISDN = "MSISDN"

// Collections exposes the collection product: requesting payments from
// customers and inspecting their state.
type Collections struct {
	gateway *Gateway
	prefix  string
}

// NewCollections creates a collections client on top of an existing gateway.
func NewCollections(g *Gateway) *Collections {
	return &Collections{
		gateway: g,
		prefix:  "/collection/" + g.cfg.Version,
	}
}

// RequestToPay asks a customer to approve a payment. The returned map
// includes the generated referenceId used for subsequent status lookups.
func (c *Collections) RequestToPay(ctx context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error) {
	if err := c.gateway.validateCurrency(currency); err != nil {
		return nil, err
	}

	referenceID := uuid.NewString()
	body := map[string]any{
		"amount":     amount,
		"currency":   currency,
		"externalId": externalID,
		"payer": map[string]any{
			"partyIdType": partyIDTypeMSISDN,
			"partyId":     partyID,
		},
		"payerMessage": payerMessage,
		"payeeNote":    payeeNote,
	}

	result, err := c.gateway.AuthenticatedRequest(ctx, http.MethodPost, c.prefix+"/requesttopay", body, map[string]string{"X-Reference-Id": referenceID})
	if err != nil {
		return nil, err
	}
	result["referenceId"] = referenceID
	return result, nil
}

// GetTransactionStatus fetches the state of a request-to-pay transaction.
func (c *Collections) GetTransactionStatus(ctx context.Context, referenceID string) (map[string]any, error) {
	return c.gateway.AuthenticatedRequest(ctx, http.MethodGet, c.prefix+"/requesttopay/"+referenceID, nil, nil)
}

// GetAccountBalance fetches the balance of the collection account.
func (c *Collections) GetAccountBalance(ctx context.Context) (map[string]any, error) {
	return c.gateway.AuthenticatedRequest(ctx, http.MethodGet, c.prefix+"/account/balance", nil, nil)
}

// GetAccountHolder fetches information about an account holder.
func (c *Collections) GetAccountHolder(ctx context.Context, accountHolderID, accountHolderIDType string) (map[string]any, error) {
	return c.gateway.AuthenticatedRequest(ctx, http.MethodGet, c.prefix+"/accountholder/"+accountHolderIDType+"/"+accountHolderID+"/active", nil, nil)
}

// ValidateAccountHolderStatus checks whether an account holder is active.
// The provider serves this from the same path as GetAccountHolder; that is
// the provider's contract, not a bug.
func (c *Collections) ValidateAccountHolderStatus(ctx context.Context, accountHolderID, accountHolderIDType string) (map[string]any, error) {
	return c.gateway.AuthenticatedRequest(ctx, http.MethodGet, c.prefix+"/accountholder/"+accountHolderIDType+"/"+accountHolderID+"/active", nil, nil)
}

// RequestToPayDeliveryNotification sends a delivery notification for a
// request-to-pay transaction.
func (c *Collections) RequestToPayDeliveryNotification(ctx context.Context, referenceID, notificationMessage string) (map[string]any, error) {
	body := map[string]any{
		"notificationMessage": notificationMessage,
	}
	return c.gateway.AuthenticatedRequest(ctx, http.MethodPost, c.prefix+"/requesttopay/"+referenceID+"/deliverynotification", body, nil)
}

// RequestToWithdraw initiates a withdrawal from a customer account.
func (c *Collections) RequestToWithdraw(ctx context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error) {
	if err := c.gateway.validateCurrency(currency); err != nil {
		return nil, err
	}

	referenceID := uuid.NewString()
	body := map[string]any{
		"amount":     amount,
		"currency":   currency,
		"externalId": externalID,
		"payee": map[string]any{
			"partyIdType": partyIDTypeMSISDN,
			"partyId":     partyID,
		},
		"payerMessage": payerMessage,
		"payeeNote":    payeeNote,
	}

	result, err := c.gateway.AuthenticatedRequest(ctx, http.MethodPost, c.prefix+"/requesttowithdraw", body, map[string]string{"X-Reference-Id": referenceID})
	if err != nil {
		return nil, err
	}
	result["referenceId"] = referenceID
	return result, nil
}

// GetWithdrawalTransactionStatus fetches the state of a withdrawal.
func (c *Collections) GetWithdrawalTransactionStatus(ctx context.Context, referenceID string) (map[string]any, error) {
	return c.gateway.AuthenticatedRequest(ctx, http.MethodGet, c.prefix+"/requesttowithdraw/"+referenceID, nil, nil)
}

// GetBCAuthorization requests a bc-authorize consent for an account holder.
func (c *Collections) GetBCAuthorization(ctx context.Context, accountHolderMSISDN, accountHolderUUID string) (map[string]any, error) {
	body := map[string]any{
		"accountHolderMSISDN": accountHolderMSISDN,
		"accountHolderUUID":   accountHolderUUID,
	}
	return c.gateway.AuthenticatedRequest(ctx, http.MethodPost, c.prefix+"/bc-authorize", body, nil)
}
