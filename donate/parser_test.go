package donate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notice(koin string, trx string, msg string) string {
	s := fmt.Sprintf("🎉 Ada Donasi Baru!\nSeseorang baru saja memberikan %s Koin", koin)

	if msg != "" {
		s += "\nPesan: " + msg
	}

	if trx != "" {
		s += "\nTransaction ID: " + trx
	}

	return s
}

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		raw  string
		koin int64
		trx  string
		msg  string
	}{
		{raw: notice("1.500", "TRX-12345", "makasih bang"), koin: 1500, trx: "TRX-12345", msg: "makasih bang"},
		{raw: notice("500", "abc_99", ""), koin: 500, trx: "abc_99", msg: ""},
		{raw: notice("12,000", "", "semangat terus"), koin: 12000, trx: "unknown", msg: "semangat terus"},
		{raw: notice("1.000.000", "TRX-1", "gg"), koin: 1000000, trx: "TRX-1", msg: "gg"},
		{raw: notice("1", "", ""), koin: 1, trx: "unknown", msg: ""},
	}

	for _, c := range cases {
		d := Parse(c.raw)
		require.NotNil(t, d, c.raw)
		assert.Equal(t, c.koin, d.Koin, c.raw)
		assert.Equal(t, c.trx, d.TransactionID, c.raw)
		assert.Equal(t, c.msg, d.Message, c.raw)
	}
}

func TestParseRejectsNonDonations(t *testing.T) {
	cases := []string{
		"",
		"hello world",
		"someone sent 1.500 Koin", // no marker
		"Ada Donasi Baru! seseorang memberi banyak", // no Koin
		"Ada Donasi Baru! Koin",                     // no amount
		"Ada Donasi Baru! nol Koin",                 // non numeric amount
	}

	for _, c := range cases {
		assert.Nil(t, Parse(c), "%q", c)
	}
}
