package commands

import (
	"bytes"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/state"
)

type SendImage struct{}

func (SendImage) Data() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "sendimage",
		Description: "Send an image directly through the bot",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionAttachment,
				Name:        "file",
				Description: "Image to send",
				Required:    true,
			},
		},
	}
}

func (SendImage) Run(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := deferReply(s, i, false); err != nil {
		return err
	}

	opts := optionMap(i)
	attachment := attachmentOption(i, opts, "file")

	if attachment == nil {
		return editReply(s, i, "❌ Failed to send image.")
	}

	data, err := downloadAttachment(state.Context, state.HTTPClient, attachment.URL)

	if err != nil {
		state.Logger.Error("Failed to download attachment", zap.Error(err), zap.String("url", attachment.URL))
		return editReply(s, i, "❌ Failed to send image.")
	}

	content := fmt.Sprintf("📤 Sending image **%s**", attachment.Filename)

	return editReplyComplex(s, i, &discordgo.WebhookEdit{
		Content: &content,
		Files: []*discordgo.File{
			{
				Name:   attachment.Filename,
				Reader: bytes.NewReader(data),
			},
		},
	})
}
