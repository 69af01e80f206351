package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vousmeveyoz/discord-jixabot/types"
)

func TestRegistryContainsAllCommands(t *testing.T) {
	reg := Registry()

	for _, name := range []string{"clear", "announce", "genkey", "sendimage", "obfuscate"} {
		assert.Contains(t, reg, name)
	}

	assert.Len(t, reg, len(All()))
}

func msg(id, authorID string, age time.Duration, now time.Time) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		Author:    &discordgo.User{ID: authorID},
		Timestamp: now.Add(-age),
	}
}

func TestSelectClearableTakesNewestFirst(t *testing.T) {
	now := time.Now()

	msgs := []*discordgo.Message{
		msg("3", "a", time.Minute, now),
		msg("2", "b", time.Hour, now),
		msg("1", "a", 2*time.Hour, now),
	}

	ids, tooOld := selectClearable(msgs, "", 2, now)

	assert.Equal(t, []string{"3", "2"}, ids)
	assert.False(t, tooOld)
}

func TestSelectClearableFiltersByAuthor(t *testing.T) {
	now := time.Now()

	msgs := []*discordgo.Message{
		msg("3", "a", time.Minute, now),
		msg("2", "b", time.Hour, now),
		msg("1", "a", 2*time.Hour, now),
	}

	ids, _ := selectClearable(msgs, "a", 5, now)

	assert.Equal(t, []string{"3", "1"}, ids)
}

func TestSelectClearableDropsOldMessages(t *testing.T) {
	now := time.Now()

	msgs := []*discordgo.Message{
		msg("2", "a", time.Hour, now),
		msg("1", "a", 15*24*time.Hour, now),
	}

	ids, tooOld := selectClearable(msgs, "", 5, now)

	assert.Equal(t, []string{"2"}, ids)
	assert.False(t, tooOld)
}

func TestSelectClearableAllTooOld(t *testing.T) {
	now := time.Now()

	msgs := []*discordgo.Message{
		msg("1", "a", 20*24*time.Hour, now),
	}

	ids, tooOld := selectClearable(msgs, "", 5, now)

	assert.Empty(t, ids)
	assert.True(t, tooOld)
}

func TestSelectClearableNoMatches(t *testing.T) {
	ids, tooOld := selectClearable(nil, "", 5, time.Now())

	assert.Empty(t, ids)
	assert.False(t, tooOld)
}

func TestSplitFileNames(t *testing.T) {
	assert.Equal(t, []string{"script.lua", "readme.txt"}, splitFileNames("script.lua, readme.txt"))
	assert.Equal(t, []string{"a"}, splitFileNames(" a ,, "))
	assert.Nil(t, splitFileNames(""))
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "game_obfuscated.lua", outputFileName("game.lua", ""))
	assert.Equal(t, "custom.lua", outputFileName("game.lua", "custom"))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.50 KB", formatBytes(1536))
	assert.Equal(t, "2.00 MB", formatBytes(2*1024*1024))
}

func TestSizeChange(t *testing.T) {
	assert.Equal(t, "+50.0%", sizeChange(100, 150))
	assert.Equal(t, "-25.0%", sizeChange(100, 75))
}

func TestAnnounceStylesCoverAllChoices(t *testing.T) {
	var data *discordgo.ApplicationCommand = Announce{}.Data()

	var typeOpt *discordgo.ApplicationCommandOption

	for _, opt := range data.Options {
		if opt.Name == "type" {
			typeOpt = opt
		}
	}

	require.NotNil(t, typeOpt)

	for _, choice := range typeOpt.Choices {
		assert.Contains(t, announceStyles, choice.Value)
	}
}

func webhookedLicense() types.License {
	userKey := "uk_1a2b3c"
	webhookURL := "https://hooks.example.com/donation/uk_1a2b3c/webhook"

	return types.License{
		Key:            "AAAA-BBBB-CCCC-DDDD",
		RobloxID:       "12345",
		WebhookUserKey: &userKey,
		WebhookURL:     &webhookURL,
	}
}

func embedField(e *discordgo.MessageEmbed, name string) *discordgo.MessageEmbedField {
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

func TestDMEmbedIncludesWebhookCredentials(t *testing.T) {
	l := webhookedLicense()

	field := embedField(dmEmbed(l, 2), "Donation Webhook")

	require.NotNil(t, field)
	assert.Contains(t, field.Value, *l.WebhookUserKey)
	assert.Contains(t, field.Value, *l.WebhookURL)
}

func TestDMEmbedNotesMissingWebhookCredentials(t *testing.T) {
	l := types.License{Key: "AAAA-BBBB-CCCC-DDDD", RobloxID: "12345"}

	field := embedField(dmEmbed(l, 0), "Donation Webhook")

	require.NotNil(t, field)
	assert.Contains(t, field.Value, "could not be provisioned")
}

func TestDMFailedContentCarriesKeyAndCredentials(t *testing.T) {
	l := webhookedLicense()

	content := dmFailedContent("987", l)

	assert.Contains(t, content, "<@987>")
	assert.Contains(t, content, l.Key)
	assert.Contains(t, content, *l.WebhookUserKey)
	assert.Contains(t, content, *l.WebhookURL)
}

func TestDMFailedContentWithoutCredentials(t *testing.T) {
	l := types.License{Key: "AAAA-BBBB-CCCC-DDDD", RobloxID: "12345"}

	content := dmFailedContent("987", l)

	assert.Contains(t, content, l.Key)
	assert.NotContains(t, content, "Webhook user key")
}

func TestDownloadAttachment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("file contents"))
	}))
	defer srv.Close()

	data, err := downloadAttachment(context.Background(), srv.Client(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte("file contents"), data)
}

func TestDownloadAttachmentNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := downloadAttachment(context.Background(), srv.Client(), srv.URL)

	assert.Error(t, err)
}

func TestDownloadAttachmentHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("too late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := downloadAttachment(ctx, srv.Client(), srv.URL)

	assert.Error(t, err)
}
