package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/donate"
	"github.com/Vousmeveyoz/discord-jixabot/store"
	"github.com/Vousmeveyoz/discord-jixabot/types"
)

// Relayer forwards a parsed donation for one customer.
type Relayer interface {
	Relay(ctx context.Context, customer *types.Customer, d *donate.Donation) bool
}

// Listener watches BagiBagi notification messages and relays donations
// for registered customers, reacting on the source message with the
// outcome.
type Listener struct {
	// Only messages authored by this bot user are considered.
	BagiBagiBotID string

	Customers store.Customers
	Relayer   Relayer
	React     func(channelID, messageID, emoji string) error
	Logger    *zap.Logger
}

// HandleMessage processes one incoming message. It reports whether a
// relay was attempted and which reaction, if any, was added.
func (l *Listener) HandleMessage(ctx context.Context, authorID, channelID, messageID, content string) (relayed bool, reaction string) {
	if authorID != l.BagiBagiBotID {
		return false, ""
	}

	d := donate.Parse(content)

	if d == nil {
		return false, ""
	}

	customer, err := l.Customers.FindByChannel(ctx, channelID)

	if err != nil {
		l.Logger.Error("Failed to look up donation customer", zap.Error(err), zap.String("channelId", channelID))
		return false, ""
	}

	// Unregistered channels are ignored without any reaction.
	if customer == nil {
		return false, ""
	}

	ok := l.Relayer.Relay(ctx, customer, d)

	reaction = "❌"

	if ok {
		reaction = "✅"
	}

	if err := l.React(channelID, messageID, reaction); err != nil {
		l.Logger.Warn("Failed to react to donation notice", zap.Error(err), zap.String("messageId", messageID))
	}

	l.Logger.Info("Donation notice handled",
		zap.Bool("success", ok),
		zap.String("userKey", customer.UserKey),
		zap.Int64("koin", d.Koin),
		zap.String("transactionId", d.TransactionID),
	)

	return true, reaction
}
