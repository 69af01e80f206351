// Package commands holds the bot's slash commands. Each command bundles
// its Discord definition with its handler so the dispatcher stays a plain
// name lookup.
package commands

import (
	"slices"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/state"
)

type Command interface {
	Data() *discordgo.ApplicationCommand
	Run(s *discordgo.Session, i *discordgo.InteractionCreate) error
}

// All returns every registered command, in registration order.
func All() []Command {
	return []Command{
		Clear{},
		Announce{},
		GenKey{},
		SendImage{},
		Obfuscate{},
	}
}

// Registry maps command names to handlers.
func Registry() map[string]Command {
	m := make(map[string]Command)

	for _, c := range All() {
		m[c.Data().Name] = c
	}

	return m
}

func guildAllowed(guildID string) bool {
	return slices.Contains(state.Config.DiscordAuth.AllowedGuilds, guildID)
}

const accessDenied = "**ACCESS DENIED**\n\nThis bot is **private** and not authorized for this server.\n> This incident has been logged and reported."

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))

	for _, opt := range opts {
		m[opt.Name] = opt
	}

	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return opt.StringValue()
	}

	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	if opt, ok := opts[name]; ok {
		return opt.IntValue()
	}

	return 0
}

func attachmentOption(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.MessageAttachment {
	opt, ok := opts[name]

	if !ok {
		return nil
	}

	id, ok := opt.Value.(string)

	if !ok {
		return nil
	}

	resolved := i.ApplicationCommandData().Resolved

	if resolved == nil {
		return nil
	}

	return resolved.Attachments[id]
}

func deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}

	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

func replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func editReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})

	return err
}

func editReplyComplex(s *discordgo.Session, i *discordgo.InteractionCreate, edit *discordgo.WebhookEdit) error {
	_, err := s.InteractionResponseEdit(i.Interaction, edit)

	return err
}

func memberHasPermission(i *discordgo.InteractionCreate, perm int64) bool {
	return i.Member != nil && i.Member.Permissions&perm == perm
}

func botHasChannelPermission(s *discordgo.Session, channelID string, perm int64) bool {
	perms, err := s.UserChannelPermissions(state.BotUser.ID, channelID)

	if err != nil {
		state.Logger.Warn("Failed to resolve bot channel permissions", zap.Error(err), zap.String("channelId", channelID))
		return false
	}

	return perms&perm == perm
}
