package donate

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Payload posted to {base}/donation/{userKey}/webhook.
type RelayPayload struct {
	Platform      string `json:"platform"`
	DonorName     string `json:"donor_name"`
	Amount        int64  `json:"amount"`
	Koin          int64  `json:"koin"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
}

type Relayer struct {
	BaseURL  string
	Platform string
	Client   *http.Client
	Logger   *zap.Logger
}

// Relay forwards one parsed donation to the customer's webhook. Best
// effort: exactly one attempt, true only on a 2xx response. The caller's
// emoji reaction is the only delivery signal.
func (r *Relayer) Relay(ctx context.Context, customer *types.Customer, d *Donation) bool {
	payload := RelayPayload{
		Platform:      r.Platform,
		DonorName:     customer.Name,
		Amount:        d.Koin * customer.KoinRate,
		Koin:          d.Koin,
		Message:       d.Message,
		TransactionID: d.TransactionID,
	}

	body, err := json.Marshal(payload)

	if err != nil {
		r.Logger.Error("Failed to marshal relay payload", zap.Error(err), zap.String("userKey", customer.UserKey))
		return false
	}

	url := fmt.Sprintf("%s/donation/%s/webhook", r.BaseURL, customer.UserKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))

	if err != nil {
		r.Logger.Error("Failed to build relay request", zap.Error(err), zap.String("userKey", customer.UserKey))
		return false
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)

	if err != nil {
		r.Logger.Error("Donation relay failed", zap.Error(err), zap.String("userKey", customer.UserKey))
		return false
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.Logger.Error("Donation relay rejected", zap.Int("status", resp.StatusCode), zap.String("userKey", customer.UserKey))
		return false
	}

	r.Logger.Info("Donation relayed",
		zap.String("userKey", customer.UserKey),
		zap.Int64("koin", d.Koin),
		zap.Int64("amount", payload.Amount),
		zap.String("transactionId", d.TransactionID),
	)

	return true
}
