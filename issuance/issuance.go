// Package issuance orchestrates the /genkey flow: key generation, webhook
// provisioning, persistence, optional BagiBagi customer registration and
// purchaser delivery.
//
// The flow degrades instead of aborting: only input validation and license
// persistence are fatal. Every other step records its outcome in Result so
// the moderator summary can report exactly what happened.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/keygen"
	"github.com/Vousmeveyoz/discord-jixabot/store"
	"github.com/Vousmeveyoz/discord-jixabot/types"
)

// Registrar provisions webhook credentials on the external webhook server.
type Registrar interface {
	Register(ctx context.Context, robloxID, discordID, discordUsername string) (*types.WebhookCredentials, error)
}

// ChannelPermissions answers whether the donation listener can actually
// read and relay messages in a channel.
type ChannelPermissions interface {
	CanRelayIn(channelID string) (bool, error)
}

// Courier delivers the issued key to the purchaser, DM first with a
// channel mention fallback. It reports whether the DM failed.
type Courier interface {
	DeliverToPurchaser(l types.License) (dmFailed bool)
}

type CustomerStatus int

const (
	// No donation channel was requested.
	CustomerNotRequested CustomerStatus = iota

	// The customer record was written and donations will relay.
	CustomerRegistered

	// A channel was requested but webhook registration failed earlier,
	// so there are no credentials to relay with.
	CustomerSkippedNoWebhook

	// A channel was requested but the bot cannot read it.
	CustomerSkippedNoPermission

	// The upsert itself failed.
	CustomerFailedStore
)

func (s CustomerStatus) String() string {
	switch s {
	case CustomerNotRequested:
		return "not requested"
	case CustomerRegistered:
		return "registered"
	case CustomerSkippedNoWebhook:
		return "skipped (webhook registration failed)"
	case CustomerSkippedNoPermission:
		return "skipped (missing channel permissions)"
	case CustomerFailedStore:
		return "failed (could not save customer)"
	default:
		return "unknown"
	}
}

type Request struct {
	RobloxID        string
	DiscordID       string
	DiscordUsername string

	// Optional tutorial link attached to the license and shown to the
	// purchaser.
	TutorialURL string

	// When set, register the purchaser as a BagiBagi customer whose
	// donation notices in this channel are relayed.
	DonationChannelID string
	CustomerName      string
	KoinRate          int64
}

// Result describes one issuance, step by step. License is always set.
type Result struct {
	License types.License

	// Credentials is nil when webhook registration failed; WebhookErr
	// then carries the reason for the moderator summary.
	Credentials *types.WebhookCredentials
	WebhookErr  error

	Customer CustomerStatus

	// DMFailed is true when the purchaser DM bounced and the key was
	// posted in-channel instead.
	DMFailed bool
}

type Orchestrator struct {
	Licenses  store.Licenses
	Customers store.Customers
	Registrar Registrar
	Perms     ChannelPermissions
	Courier   Courier
	Logger    *zap.Logger

	// DefaultKoinRate applies when a donation channel is requested
	// without an explicit rate.
	DefaultKoinRate int64
}

var ErrBadRobloxID = errors.New("roblox id must be a non-empty numeric string")

// Issue runs the full flow for one /genkey invocation.
func (o *Orchestrator) Issue(ctx context.Context, req Request) (*Result, error) {
	if !validRobloxID(req.RobloxID) {
		return nil, ErrBadRobloxID
	}

	res := &Result{
		License: types.License{
			Key:       keygen.New(),
			RobloxID:  req.RobloxID,
			DiscordID: req.DiscordID,
			CreatedAt: time.Now(),
		},
	}

	if req.TutorialURL != "" {
		res.License.TutorialURL = &req.TutorialURL
	}

	creds, err := o.Registrar.Register(ctx, req.RobloxID, req.DiscordID, req.DiscordUsername)

	if err != nil {
		o.Logger.Warn("Webhook registration failed, issuing license without webhook", zap.Error(err), zap.String("robloxId", req.RobloxID))
		res.WebhookErr = err
	} else {
		res.Credentials = creds
		res.License.WebhookUserKey = &creds.UserKey
		res.License.WebhookAPIKey = &creds.APIKey
		res.License.WebhookURL = &creds.WebhookURL
	}

	if err := o.Licenses.Append(ctx, res.License); err != nil {
		return nil, fmt.Errorf("failed to persist license: %w", err)
	}

	if req.DonationChannelID != "" {
		res.Customer = o.registerCustomer(ctx, req, res)
	}

	res.DMFailed = o.Courier.DeliverToPurchaser(res.License)

	return res, nil
}

func (o *Orchestrator) registerCustomer(ctx context.Context, req Request, res *Result) CustomerStatus {
	if res.Credentials == nil {
		return CustomerSkippedNoWebhook
	}

	ok, err := o.Perms.CanRelayIn(req.DonationChannelID)

	if err != nil || !ok {
		if err != nil {
			o.Logger.Warn("Channel permission check failed", zap.Error(err), zap.String("channelId", req.DonationChannelID))
		}

		return CustomerSkippedNoPermission
	}

	rate := req.KoinRate

	if rate <= 0 {
		rate = o.DefaultKoinRate
	}

	name := req.CustomerName

	if name == "" {
		name = req.DiscordUsername
	}

	now := time.Now()

	err = o.Customers.Upsert(ctx, types.Customer{
		UserKey:   res.Credentials.UserKey,
		Name:      name,
		ChannelID: req.DonationChannelID,
		KoinRate:  rate,
		CreatedAt: now,
		UpdatedAt: now,
	})

	if err != nil {
		o.Logger.Error("Failed to upsert customer", zap.Error(err), zap.String("userKey", res.Credentials.UserKey))
		return CustomerFailedStore
	}

	return CustomerRegistered
}

func validRobloxID(id string) bool {
	if id == "" {
		return false
	}

	return strings.IndexFunc(id, func(r rune) bool {
		return r < '0' || r > '9'
	}) == -1
}
