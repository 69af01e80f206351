// Package keygen generates license keys of the form XXXX-XXXX-XXXX-XXXX.
package keygen

import (
	"crypto/rand"
	"strings"
)

const (
	// Uppercase alphanumerics only; no lowercase or symbols so keys
	// survive being read out loud or retyped.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	SectionLength = 4
	Sections      = 4
)

// New returns a fresh license key. Collisions are not checked; the 36^16
// keyspace makes them negligible.
func New() string {
	buf := make([]byte, SectionLength*Sections)

	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the OS entropy source is broken,
		// nothing sensible to do but stop.
		panic("keygen: " + err.Error())
	}

	var b strings.Builder

	for i, c := range buf {
		if i > 0 && i%SectionLength == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(Alphabet[int(c)%len(Alphabet)])
	}

	return b.String()
}
