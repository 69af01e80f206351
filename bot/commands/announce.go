package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/state"
)

type announceStyle struct {
	Color int
	Emoji string
	Label string
}

var announceStyles = map[string]announceStyle{
	"general":   {Color: 0x5865F2, Emoji: "📢", Label: "General Announcement"},
	"event":     {Color: 0xFEE75C, Emoji: "🎉", Label: "Event Announcement"},
	"important": {Color: 0xED4245, Emoji: "⚠️", Label: "Important Notice"},
	"update":    {Color: 0x57F287, Emoji: "🔔", Label: "Update Notice"},
	"giveaway":  {Color: 0xEB459E, Emoji: "🎁", Label: "Giveaway"},
	"alert":     {Color: 0xFF6B6B, Emoji: "🚨", Label: "Alert"},
}

type Announce struct{}

func (Announce) Data() *discordgo.ApplicationCommand {
	manageMessages := int64(discordgo.PermissionManageMessages)
	dmPermission := false

	return &discordgo.ApplicationCommand{
		Name:                     "announce",
		Description:              "Send a modern announcement to a channel",
		DefaultMemberPermissions: &manageMessages,
		DMPermission:             &dmPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "title",
				Description: "Announcement title",
				Required:    true,
				MaxLength:   256,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Announcement message",
				Required:    true,
				MaxLength:   4000,
			},
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Channel to send announcement",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type",
				Description: "Announcement type/style",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "📢 General", Value: "general"},
					{Name: "🎉 Event", Value: "event"},
					{Name: "⚠️ Important", Value: "important"},
					{Name: "🔔 Update", Value: "update"},
					{Name: "🎁 Giveaway", Value: "giveaway"},
					{Name: "🚨 Alert", Value: "alert"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "image",
				Description: "Image URL (optional)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "thumbnail",
				Description: "Thumbnail URL (optional)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "footer",
				Description: "Footer text (optional)",
				MaxLength:   2048,
			},
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "ping",
				Description: "Role to ping (optional)",
			},
		},
	}
}

func (Announce) Run(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := deferReply(s, i, true); err != nil {
		return err
	}

	if i.GuildID == "" {
		return editReply(s, i, "**This command can only be used in a server!**")
	}

	if !guildAllowed(i.GuildID) {
		state.Logger.Warn("Unauthorized /announce attempt", zap.String("guildId", i.GuildID), zap.String("userId", i.Member.User.ID))
		return editReply(s, i, accessDenied)
	}

	if !memberHasPermission(i, discordgo.PermissionManageMessages) {
		return editReply(s, i, "**You don't have permission to use this command!**\n> Required: Manage Messages")
	}

	opts := optionMap(i)

	title := stringOption(opts, "title")
	message := stringOption(opts, "message")

	var targetChannelID string

	if opt, ok := opts["channel"]; ok {
		targetChannelID = opt.ChannelValue(nil).ID
	}

	announceType := stringOption(opts, "type")

	if announceType == "" {
		announceType = "general"
	}

	style := announceStyles[announceType]

	if !botHasChannelPermission(s, targetChannelID, discordgo.PermissionSendMessages) {
		return editReply(s, i, fmt.Sprintf("**I don't have permission in <#%s>!**\n> Required: Send Messages", targetChannelID))
	}

	footerText := stringOption(opts, "footer")

	if footerText == "" {
		footerText = fmt.Sprintf("%s • Posted by %s", style.Label, i.Member.User.Username)
	}

	embed := &discordgo.MessageEmbed{
		Color:       style.Color,
		Title:       style.Emoji + " " + title,
		Description: message,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    footerText,
			IconURL: i.Member.User.AvatarURL(""),
		},
	}

	if imageURL := stringOption(opts, "image"); imageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: imageURL}
	}

	if thumbnailURL := stringOption(opts, "thumbnail"); thumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnailURL}
	}

	row := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: "announce_react",
				Label:    "✓ Acknowledged",
				Style:    discordgo.SuccessButton,
				Disabled: true,
			},
			discordgo.Button{
				Label: "View Server",
				Style: discordgo.LinkButton,
				URL:   "https://discord.com/channels/" + i.GuildID,
			},
		},
	}

	var content string

	if opt, ok := opts["ping"]; ok {
		content = fmt.Sprintf("<@&%s>", opt.RoleValue(nil, i.GuildID).ID)
	}

	_, err := s.ChannelMessageSendComplex(targetChannelID, &discordgo.MessageSend{
		Content:    content,
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{row},
	})

	if err != nil {
		state.Logger.Error("Failed to send announcement", zap.Error(err), zap.String("channelId", targetChannelID))
		return editReply(s, i, "**Failed to send announcement.**\n\n> An unexpected error occurred. Please try again.")
	}

	successEmbed := &discordgo.MessageEmbed{
		Color:       0x57F287,
		Title:       "Announcement Sent Successfully!",
		Description: fmt.Sprintf("Your announcement has been posted to <#%s>", targetChannelID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Title", Value: title},
			{Name: "Type", Value: style.Label, Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", targetChannelID), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	state.Logger.Info("Announcement posted", zap.String("moderator", i.Member.User.ID), zap.String("title", title), zap.String("channelId", targetChannelID))

	return editReplyComplex(s, i, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{successEmbed},
	})
}
