// Package webhookreg provisions per-user webhook credentials on the
// external donation webhook server.
package webhookreg

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

type registerRequest struct {
	RobloxID        string `json:"robloxId"`
	DiscordID       string `json:"discordId"`
	DiscordUsername string `json:"discordUsername"`
}

type Registrar struct {
	BaseURL   string
	MasterKey string
	Client    *http.Client
	Logger    *zap.Logger
}

// Register performs a single POST to the admin endpoint. Any non-2xx or
// transport failure is returned as an error; callers treat registration
// failure as non-fatal to license issuance.
func (r *Registrar) Register(ctx context.Context, robloxID, discordID, discordUsername string) (*types.WebhookCredentials, error) {
	body, err := json.Marshal(registerRequest{
		RobloxID:        robloxID,
		DiscordID:       discordID,
		DiscordUsername: discordUsername,
	})

	if err != nil {
		return nil, fmt.Errorf("marshal register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/admin/users/register", bytes.NewReader(body))

	if err != nil {
		return nil, fmt.Errorf("build register request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", r.MasterKey)

	resp, err := r.Client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("webhook server unreachable: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("webhook server returned status %d", resp.StatusCode)
	}

	var creds types.WebhookCredentials

	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("decode register response: %w", err)
	}

	if creds.UserKey == "" || creds.WebhookURL == "" {
		return nil, fmt.Errorf("webhook server returned incomplete credentials")
	}

	r.Logger.Info("Webhook registered", zap.String("discordId", discordID), zap.String("userKey", creds.UserKey))

	return &creds, nil
}
