// Package donate turns BagiBagi notification messages into donation events
// and relays them to per-customer webhooks.
package donate

import (
	"regexp"
	"strconv"
	"strings"
)

// Marker present in every BagiBagi donation notice. Anything without it is
// rejected before the regexes run.
const Marker = "Ada Donasi Baru"

// TRX id label is not always present; older notices omit it.
const unknownTransactionID = "unknown"

var (
	// 1.500 Koin, 12,000 Koin, 500 Koin
	amountRe = regexp.MustCompile(`([0-9][0-9.,]*)\s*Koin`)

	transactionRe = regexp.MustCompile(`Transaction ID:\s*([A-Za-z0-9_-]+)`)

	messageRe = regexp.MustCompile(`(?m)^Pesan:[ \t]*(.*)$`)
)

// Donation is a parsed BagiBagi notice. Transient; never persisted.
type Donation struct {
	Koin          int64
	TransactionID string
	Message       string
}

// Parse extracts a donation from a BagiBagi notice. It returns nil for
// anything that does not look like one; that is the normal case for most
// chat traffic, not an error.
//
// This is template matching against one upstream bot's exact formatting.
// If BagiBagi ever changes its notice text, detection stops silently, so
// keep the fixtures in parser_test.go in sync with the live format.
func Parse(text string) *Donation {
	if !strings.Contains(text, Marker) || !strings.Contains(text, "Koin") {
		return nil
	}

	m := amountRe.FindStringSubmatch(text)

	if m == nil {
		return nil
	}

	raw := strings.NewReplacer(".", "", ",", "").Replace(m[1])

	koin, err := strconv.ParseInt(raw, 10, 64)

	if err != nil || koin < 1 {
		return nil
	}

	d := &Donation{
		Koin:          koin,
		TransactionID: unknownTransactionID,
	}

	if m := transactionRe.FindStringSubmatch(text); m != nil {
		d.TransactionID = m[1]
	}

	if m := messageRe.FindStringSubmatch(text); m != nil {
		d.Message = strings.TrimSpace(m[1])
	}

	return d
}
