package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/state"
)

// Bulk delete refuses messages older than this.
const bulkDeleteMaxAge = 14 * 24 * time.Hour

type Clear struct{}

func (Clear) Data() *discordgo.ApplicationCommand {
	manageMessages := int64(discordgo.PermissionManageMessages)
	dmPermission := false
	minAmount := float64(1)

	return &discordgo.ApplicationCommand{
		Name:                     "clear",
		Description:              "Clear messages in the channel",
		DefaultMemberPermissions: &manageMessages,
		DMPermission:             &dmPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "amount",
				Description: "Number of messages to delete (1-100)",
				Required:    true,
				MinValue:    &minAmount,
				MaxValue:    100,
			},
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Only delete messages from this user (optional)",
			},
		},
	}
}

func (Clear) Run(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	// Defer immediately so slow deletes don't hit the interaction timeout
	if err := deferReply(s, i, true); err != nil {
		return err
	}

	if i.GuildID == "" {
		return editReply(s, i, "**This command can only be used in a server!**")
	}

	if !guildAllowed(i.GuildID) {
		state.Logger.Warn("Unauthorized /clear attempt", zap.String("guildId", i.GuildID), zap.String("userId", i.Member.User.ID))
		return editReply(s, i, accessDenied)
	}

	if !memberHasPermission(i, discordgo.PermissionManageMessages) {
		return editReply(s, i, "**You don't have permission to use this command!**\n> Required: Manage Messages")
	}

	if !botHasChannelPermission(s, i.ChannelID, discordgo.PermissionManageMessages) {
		return editReply(s, i, "**I don't have permission to delete messages!**\n> Required: Manage Messages")
	}

	opts := optionMap(i)
	amount := int(intOption(opts, "amount"))

	var targetUserID string

	if opt, ok := opts["user"]; ok {
		targetUserID = opt.UserValue(nil).ID
	}

	fetched, err := s.ChannelMessages(i.ChannelID, 100, "", "", "")

	if err != nil {
		state.Logger.Error("Failed to fetch messages for /clear", zap.Error(err), zap.String("channelId", i.ChannelID))
		return editReply(s, i, "**Failed to delete messages.**\n\n> An unexpected error occurred. Please try again.")
	}

	ids, tooOld := selectClearable(fetched, targetUserID, amount, time.Now())

	if len(ids) == 0 {
		if tooOld {
			return editReply(s, i, "All selected messages are older than 14 days and cannot be bulk deleted.")
		}

		if targetUserID != "" {
			return editReply(s, i, fmt.Sprintf("No messages found from <@%s> in the last 100 messages.", targetUserID))
		}

		return editReply(s, i, "No messages found to delete.")
	}

	if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
		state.Logger.Error("Bulk delete failed", zap.Error(err), zap.String("channelId", i.ChannelID))
		return editReply(s, i, "**Failed to delete messages.**\n\n> I don't have permission to delete messages.")
	}

	details := fmt.Sprintf("**Requested:** %d message(s)\n**Deleted:** %d message(s)\n**Channel:** <#%s>\n", amount, len(ids), i.ChannelID)

	if targetUserID != "" {
		details += fmt.Sprintf("**Target User:** <@%s>\n", targetUserID)
	}

	details += fmt.Sprintf("**Moderator:** <@%s>", i.Member.User.ID)

	desc := fmt.Sprintf("Successfully deleted **%d** message(s)", len(ids))

	if targetUserID != "" {
		desc += fmt.Sprintf(" from <@%s>", targetUserID)
	}

	desc += fmt.Sprintf(" in <#%s>", i.ChannelID)

	embed := &discordgo.MessageEmbed{
		Color:       0x00FF87,
		Title:       "Messages Cleared",
		Description: desc,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Details", Value: details},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Cleared by " + i.Member.User.Username,
		},
	}

	state.Logger.Info("Messages cleared", zap.String("moderator", i.Member.User.ID), zap.Int("count", len(ids)), zap.String("channelId", i.ChannelID))

	return editReplyComplex(s, i, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
}

// selectClearable picks up to amount message IDs to bulk delete, newest
// first, optionally filtered to one author. tooOld reports that matches
// existed but every one of them was past the 14 day bulk delete window.
func selectClearable(msgs []*discordgo.Message, targetUserID string, amount int, now time.Time) (ids []string, tooOld bool) {
	matched := 0

	for _, m := range msgs {
		if targetUserID != "" && (m.Author == nil || m.Author.ID != targetUserID) {
			continue
		}

		if matched >= amount {
			break
		}

		matched++

		if now.Sub(m.Timestamp) >= bulkDeleteMaxAge {
			continue
		}

		ids = append(ids, m.ID)
	}

	return ids, matched > 0 && len(ids) == 0
}
