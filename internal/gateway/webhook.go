package gateway

// WebhookPayload is the callback body the gateway posts after a charge
// resolves. Field naming follows the same schema drift as the rest of
// the API, so every accessor applies the documented precedence.
type WebhookPayload struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`

	TransactionID string `json:"transaction_id"`
	ID            string `json:"id"`
	TxID          string `json:"txid"`

	Amount float64 `json:"amount"`
	Value  float64 `json:"value"`

	ExternalReference string `json:"external_reference"`
	ExternalID        string `json:"external_id"`
}

// NormalizedStatus returns the gateway status, preferring status over
// payment_status.
func (p WebhookPayload) NormalizedStatus() string {
	return firstNonEmpty(p.Status, p.PaymentStatus)
}

// NormalizedTransactionID prefers transaction_id, then id, then txid.
func (p WebhookPayload) NormalizedTransactionID() string {
	return firstNonEmpty(p.TransactionID, p.ID, p.TxID)
}

// NormalizedAmount prefers amount over value.
func (p WebhookPayload) NormalizedAmount() float64 {
	if p.Amount != 0 {
		return p.Amount
	}
	return p.Value
}

// NormalizedExternalReference prefers external_reference over external_id.
func (p WebhookPayload) NormalizedExternalReference() string {
	return firstNonEmpty(p.ExternalReference, p.ExternalID)
}

// Success tokens the gateway has been observed to send for a settled
// charge. Comparison is exact; the gateway is consistent about casing
// per token.
var successStatuses = map[string]bool{
	"COMPLETED": true,
	"paid":      true,
	"approved":  true,
}

// IsSuccessful reports whether the callback signals a settled payment.
// Every other status is acknowledged without side effects.
func (p WebhookPayload) IsSuccessful() bool {
	return successStatuses[p.NormalizedStatus()]
}
