// Package bot wires the Discord session: slash command registration and
// dispatch, plus the passive BagiBagi donation listener.
package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/bot/commands"
	"github.com/Vousmeveyoz/discord-jixabot/state"
)

// Start registers handlers and opens the gateway connection. Call Stop
// to close it.
func Start() error {
	registry := commands.Registry()

	var defs []*discordgo.ApplicationCommand

	for _, c := range commands.All() {
		defs = append(defs, c.Data())
	}

	state.Discord.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		state.Logger.Info("Bot ready",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)),
			zap.Int("commands", len(defs)),
		)

		// Bulk overwrite replaces each whitelisted guild's commands with
		// exactly ours, clearing leftovers from previous runs.
		for _, guildID := range state.Config.DiscordAuth.AllowedGuilds {
			_, err := s.ApplicationCommandBulkOverwrite(r.User.ID, guildID, defs)

			if err != nil {
				state.Logger.Error("Failed to sync commands", zap.Error(err), zap.String("guildId", guildID))
			}
		}
	})

	state.Discord.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		name := i.ApplicationCommandData().Name
		cmd, ok := registry[name]

		if !ok {
			state.Logger.Warn("Unknown command", zap.String("command", name))
			return
		}

		if err := cmd.Run(s, i); err != nil {
			state.Logger.Error("Command failed", zap.Error(err), zap.String("command", name))

			// Best effort generic failure notice; the interaction may
			// already be acknowledged.
			err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Content: "❌ An error occurred while running the command.",
					Flags:   discordgo.MessageFlagsEphemeral,
				},
			})

			if err != nil {
				content := "❌ An error occurred while running the command."
				_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
			}
		}
	})

	listener := &Listener{
		BagiBagiBotID: state.Config.BagiBagi.BotID,
		Customers:     state.Customers,
		Relayer:       state.Relayer,
		React: func(channelID, messageID, emoji string) error {
			return state.Discord.MessageReactionAdd(channelID, messageID, emoji)
		},
		Logger: state.Logger,
	}

	state.Discord.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.ID == state.BotUser.ID {
			return
		}

		listener.HandleMessage(state.Context, m.Author.ID, m.ChannelID, m.ID, m.Content)
	})

	return state.Discord.Open()
}

func Stop() error {
	return state.Discord.Close()
}
