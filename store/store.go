// Package store persists licenses and BagiBagi customers.
//
// Both collections are plain Postgres tables behind small interfaces so the
// issuance and relay paths can be exercised against in-memory fakes.
package store

import (
	"context"
	"time"

	"github.com/Vousmeveyoz/discord-jixabot/types"
)

// Licenses is the append-mostly license registry. Records are never
// deleted; only LastUsed is ever mutated after creation.
type Licenses interface {
	// Append stores a new license. IO errors propagate to the caller.
	Append(ctx context.Context, l types.License) error

	// FindByKey returns the license for key, or (nil, nil) when absent.
	FindByKey(ctx context.Context, key string) (*types.License, error)

	// TouchLastUsed records a successful validation of key.
	TouchLastUsed(ctx context.Context, key string, t time.Time) error
}

// Customers is the BagiBagi customer registry, keyed by webhook user key.
type Customers interface {
	// Upsert inserts or overwrites the record for c.UserKey. The channel
	// binding is exclusive: any other customer bound to c.ChannelID is
	// released so relay lookups stay unambiguous.
	Upsert(ctx context.Context, c types.Customer) error

	// FindByChannel returns the customer bound to channelID, or
	// (nil, nil) when the channel has no registered customer.
	FindByChannel(ctx context.Context, channelID string) (*types.Customer, error)
}
