package momo

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Disbursements exposes the disbursement product: paying money out to
// account holders and inspecting transfer state.
type Disbursements struct {
	gateway *Gateway
	prefix  string
}

// NewDisbursements creates a disbursements client on top of an existing gateway.
func NewDisbursements(g *Gateway) *Disbursements {
	return &Disbursements{
		gateway: g,
		prefix:  "/disbursement/" + g.cfg.Version,
	}
}

// Transfer sends money to a payee. The returned map includes the generated
// referenceId used for subsequent status lookups.
func (d *Disbursements) Transfer(ctx context.Context, externalID, partyID string, amount float64, currency, payerMessage, payeeNote string) (map[string]any, error) {
	if err := d.gateway.validateCurrency(currency); err != nil {
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

	result, err := d.gateway.AuthenticatedRequest(ctx, http.MethodPost, d.prefix+"/transfer", body, map[string]string{"X-Reference-Id": referenceID})
	if err != nil {
		return nil, err
	}
	result["referenceId"] = referenceID
	return result, nil
}

// GetTransactionStatus fetches the state of a transfer.
func (d *Disbursements) GetTransactionStatus(ctx context.Context, referenceID string) (map[string]any, error) {
	return d.gateway.AuthenticatedRequest(ctx, http.MethodGet, d.prefix+"/transfer/"+referenceID, nil, nil)
}

// GetAccountBalance fetches the balance of the disbursement account.
func (d *Disbursements) GetAccountBalance(ctx context.Context) (map[string]any, error) {
	return d.gateway.AuthenticatedRequest(ctx, http.MethodGet, d.prefix+"/account/balance", nil, nil)
}

// GetAccountHolder fetches information about an account holder.
func (d *Disbursements) GetAccountHolder(ctx context.Context, accountHolderID, accountHolderIDType string) (map[string]any, error) {
	return d.gateway.AuthenticatedRequest(ctx, http.MethodGet, d.prefix+"/accountholder/"+accountHolderIDType+"/"+accountHolderID+"/active", nil, nil)
}

// ValidateAccountHolderStatus checks whether an account holder is active.
func (d *Disbursements) ValidateAccountHolderStatus(ctx context.Context, accountHolderID, accountHolderIDType string) (map[string]any, error) {
	return d.gateway.AuthenticatedRequest(ctx, http.MethodGet, d.prefix+"/accountholder/"+accountHolderIDType+"/"+accountHolderID+"/active", nil, nil)
}

// GetBasicUserinfo fetches basic KYC information for a subscriber.
func (d *Disbursements) GetBasicUserinfo(ctx context.Context, msisdn string) (map[string]any, error) {
	return d.gateway.AuthenticatedRequest(ctx, http.MethodGet, d.prefix+"/accountholder/msisdn/"+msisdn+"/basicuserinfo", nil, nil)
}

// Refund refunds a previous transfer identified by referenceID.
func (d *Disbursements) Refund(ctx context.Context, externalID string, amount float64, currency, referenceID, payerMessage, payeeNote string) (map[string]any, error) {
	if err := d.gateway.validateCurrency(currency); err != nil {
		return nil, err
	}

	refundReferenceID := uuid.NewString()
	body := map[string]any{
		"amount":       amount,
		"currency":     currency,
		"externalId":   externalID,
		"referenceId":  referenceID,
		"payerMessage": payerMessage,
		"payeeNote":    payeeNote,
	}

	result, err := d.gateway.AuthenticatedRequest(ctx, http.MethodPost, d.prefix+"/refund", body, map[string]string{"X-Reference-Id": refundReferenceID})
	if err != nil {
		return nil, err
	}
	result["referenceId"] = refundReferenceID
	return result, nil
}

// GetRefundStatus fetches the state of a refund.
func (d *Disbursements) GetRefundStatus(ctx context.Context, referenceID string) (map[string]any, error) {
	return d.gateway.AuthenticatedRequest(ctx, http.MethodGet, d.prefix+"/refund/"+referenceID, nil, nil)
}

// GetDepositStatus fetches the state of a deposit.
func (d *Disbursements) GetDepositStatus(ctx context.Context, referenceID string) (map[string]any, error) {
	return d.gateway.AuthenticatedRequest(ctx, http.MethodGet, d.prefix+"/deposit/"+referenceID, nil, nil)
}
