package gateway

// The gateway's response schema has drifted across versions: v1 returns
// transaction_id/pix_code/qr_image, older sandboxes still return id or
// txid, qrcode or emv, qrcode_image. The payload structs below capture
// every known variant and normalize with a fixed precedence, newest
// schema first.

type chargePayload struct {
	TransactionID string `json:"transaction_id"`
	ID            string `json:"id"`
	TxID          string `json:"txid"`

	PixCode string `json:"pix_code"`
	QRCode  string `json:"qrcode"`
	EMV     string `json:"emv"`

	QRImage     string `json:"qr_image"`
	QRCodeImage string `json:"qrcode_image"`
}

func (p *chargePayload) transactionID() string {
	return firstNonEmpty(p.TransactionID, p.ID, p.TxID)
}

func (p *chargePayload) pixCode() string {
	return firstNonEmpty(p.PixCode, p.QRCode, p.EMV)
}

func (p *chargePayload) qrImage() string {
	return firstNonEmpty(p.QRImage, p.QRCodeImage)
}

type chargeStatusPayload struct {
	Status string  `json:"status"`
	Amount float64 `json:"amount"`

	PaidAt      string `json:"paid_at"`
	CompletedAt string `json:"completed_at"`
}

func (p *chargeStatusPayload) paidAt() string {
	return firstNonEmpty(p.PaidAt, p.CompletedAt)
}

type payoutPayload struct {
	TransactionID string `json:"transaction_id"`
	ID            string `json:"id"`
	Status        string `json:"status"`
}

func (p *payoutPayload) transactionID() string {
	return firstNonEmpty(p.TransactionID, p.ID)
}

type payoutStatusPayload struct {
	Status        string `json:"status"`
	CompletedAt   string `json:"completed_at"`
	FailureReason string `json:"failure_reason"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
