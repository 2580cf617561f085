package momo

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Remittances exposes the remittance product: cross-border transfers to
// account holders.
type Remittances struct {
	gateway *Gateway
	prefix  string
}

// NewRemittances creates a remittances client on top of an existing gateway.
func NewRemittances(g *Gateway) *Remittances {
	return &Remittances{
		gateway: g,
		prefix:  "/remittance/" + g.cfg.Version,
	}
}

// Transfer remits money to a payee. The returned map includes the generated
// referenceId used for subsequent status lookups.
func (r *Remittances) Transfer(ctx context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error) {
	if err := r.gateway.validateCurrency(currency); err != nil {
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

	result, err := r.gateway.AuthenticatedRequest(ctx, http.MethodPost, r.prefix+"/transfer", body, map[string]string{"X-Reference-Id": referenceID})
	if err != nil {
		return nil, err
	}
	result["referenceId"] = referenceID
	return result, nil
}

// GetTransactionStatus fetches the state of a remittance transfer.
func (r *Remittances) GetTransactionStatus(ctx context.Context, referenceID string) (map[string]any, error) {
	return r.gateway.AuthenticatedRequest(ctx, http.MethodGet, r.prefix+"/transfer/"+referenceID, nil, nil)
}

// GetAccountBalance fetches the balance of the remittance account.
func (r *Remittances) GetAccountBalance(ctx context.Context) (map[string]any, error) {
	return r.gateway.AuthenticatedRequest(ctx, http.MethodGet, r.prefix+"/account/balance", nil, nil)
}

// GetAccountHolder fetches information about an account holder.
func (r *Remittances) GetAccountHolder(ctx context.Context, accountHolderID, accountHolderIDType string) (map[string]any, error) {
	return r.gateway.AuthenticatedRequest(ctx, http.MethodGet, r.prefix+"/accountholder/"+accountHolderIDType+"/"+accountHolderID+"/active", nil, nil)
}

// ValidateAccountHolderStatus checks whether an account holder is active.
func (r *Remittances) ValidateAccountHolderStatus(ctx context.Context, accountHolderID, accountHolderIDType string) (map[string]any, error) {
	return r.gateway.AuthenticatedRequest(ctx, http.MethodGet, r.prefix+"/accountholder/"+accountHolderIDType+"/"+accountHolderID+"/active", nil, nil)
}

// GetBasicUserinfo fetches basic KYC information for a subscriber.
func (r *Remittances) GetBasicUserinfo(ctx context.Context, msisdn string) (map[string]any, error) {
	return r.gateway.AuthenticatedRequest(ctx, http.MethodGet, r.prefix+"/accountholder/msisdn/"+msisdn+"/basicuserinfo", nil, nil)
}

// CashTransfer initiates a cash transfer without a registered payee account.
func (r *Remittances) CashTransfer(ctx context.Context, externalID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error) {
	if err := r.gateway.validateCurrency(currency); err != nil {
		return nil, err
	}

	referenceID := uuid.NewString()
	body := map[string]any{
		"amount":       amount,
		"currency":     currency,
		"externalId":   externalID,
		"payerMessage": payerMessage,
		"payeeNote":    payeeNote,
	}

	result, err := r.gateway.AuthenticatedRequest(ctx, http.MethodPost, r.prefix+"/cashtransfer", body, map[string]string{"X-Reference-Id": referenceID})
	if err != nil {
		return nil, err
	}
	result["referenceId"] = referenceID
	return result, nil
}

// GetCashTransferStatus fetches the state of a cash transfer.
func (r *Remittances) GetCashTransferStatus(ctx context.Context, referenceID string) (map[string]any, error) {
	return r.gateway.AuthenticatedRequest(ctx, http.MethodGet, r.prefix+"/cashtransfer/"+referenceID, nil, nil)
}
