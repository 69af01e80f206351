package store

import (
	"context"
	"sync"
	"time"

	"github.com/Vousmeveyoz/discord-jixabot/types"
)

// In-memory implementations with the same semantics as the Postgres ones,
// used wherever a database is not available (primarily tests).

type MemLicenses struct {
	mu       sync.Mutex
	Licenses map[string]types.License
}

func NewMemLicenses() *MemLicenses {
	return &MemLicenses{Licenses: map[string]types.License{}}
}

func (s *MemLicenses) Append(_ context.Context, l types.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Licenses[l.Key] = l
	return nil
}

func (s *MemLicenses) FindByKey(_ context.Context, key string) (*types.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.Licenses[key]

	if !ok {
		return nil, nil
	}

	return &l, nil
}

func (s *MemLicenses) TouchLastUsed(_ context.Context, key string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.Licenses[key]

	if !ok {
		return nil
	}

	l.LastUsed = &t
	s.Licenses[key] = l
	return nil
}

type MemCustomers struct {
	mu        sync.Mutex
	Customers map[string]types.Customer
}

func NewMemCustomers() *MemCustomers {
	return &MemCustomers{Customers: map[string]types.Customer{}}
}

func (s *MemCustomers) Upsert(_ context.Context, c types.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, other := range s.Customers {
		if other.ChannelID == c.ChannelID && key != c.UserKey {
			delete(s.Customers, key)
		}
	}

	if prev, ok := s.Customers[c.UserKey]; ok {
		c.CreatedAt = prev.CreatedAt
	} else if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}

	s.Customers[c.UserKey] = c
	return nil
}

func (s *MemCustomers) FindByChannel(_ context.Context, channelID string) (*types.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.Customers {
		if c.ChannelID == channelID {
			return &c, nil
		}
	}

	return nil, nil
}
