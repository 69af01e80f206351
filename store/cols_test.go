package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vousmeveyoz/discord-jixabot/types"
)

func TestGetCols(t *testing.T) {
	assert.Equal(t, []string{
		"key",
		"roblox_id",
		"discord_id",
		"created_at",
		"last_used",
		"tutorial_url",
		"webhook_user_key",
		"webhook_api_key",
		"webhook_url",
	}, getCols(types.License{}))

	assert.Equal(t, []string{
		"user_key",
		"name",
		"channel_id",
		"koin_rate",
		"created_at",
		"updated_at",
	}, getCols(types.Customer{}))
}
