package types

import (
	"time"
)

// API error, shaped the way the validate endpoint's clients expect it
// (success flag + human readable message).
type ApiError struct {
	Success bool              `json:"success"`
	Message string            `json:"message" description:"Message of the error"`
	Context map[string]string `json:"context,omitempty" description:"Context of the error. Usually used for validation error contexts"`
}

// A license issued through /genkey.
//
// Webhook fields are nil when webhook registration failed or was never
// attempted; the license is still valid without them.
type License struct {
	Key            string     `db:"key" json:"key" description:"The license key (XXXX-XXXX-XXXX-XXXX)"`
	RobloxID       string     `db:"roblox_id" json:"robloxId" description:"Roblox user ID the license is bound to"`
	DiscordID      string     `db:"discord_id" json:"discordId" description:"Discord user ID of the purchaser"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	LastUsed       *time.Time `db:"last_used" json:"lastUsed,omitempty" description:"Set by the validate endpoint on every successful lookup"`
	TutorialURL    *string    `db:"tutorial_url" json:"tutorialUrl,omitempty"`
	WebhookUserKey *string    `db:"webhook_user_key" json:"webhookUserKey,omitempty"`
	WebhookAPIKey  *string    `db:"webhook_api_key" json:"-"`
	WebhookURL     *string    `db:"webhook_url" json:"webhookUrl,omitempty"`
}

// A BagiBagi donation customer. Exactly one record per user key, and at
// most one customer bound to any given channel.
type Customer struct {
	UserKey   string    `db:"user_key" json:"userKey"`
	Name      string    `db:"name" json:"name"`
	ChannelID string    `db:"channel_id" json:"channelId"`
	KoinRate  int64     `db:"koin_rate" json:"koinRate" description:"Rupiah per koin multiplier applied before relaying"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Credentials provisioned by the external webhook server for one user.
type WebhookCredentials struct {
	UserKey    string `json:"userKey"`
	APIKey     string `json:"apiKey"`
	WebhookURL string `json:"webhookUrl"`
}

type ValidateRequest struct {
	Key      string `json:"key" description:"The license key to validate"`
	RobloxID string `json:"robloxId,omitempty" description:"Optional. When set, must match the license's bound Roblox ID"`
}

type ValidatedLicense struct {
	RobloxID       string     `json:"robloxId"`
	DiscordID      string     `json:"discordId"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastUsed       *time.Time `json:"lastUsed,omitempty"`
	WebhookURL     *string    `json:"webhookUrl,omitempty"`
	WebhookUserKey *string    `json:"webhookUserKey,omitempty"`
}

type ValidateResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    *ValidatedLicense `json:"data,omitempty"`
}
