package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/obfuscator"
	"github.com/Vousmeveyoz/discord-jixabot/state"
)

var presetEmojis = map[string]string{
	"weak":   "🟢",
	"medium": "🟡",
	"strong": "🔴",
	"minify": "📦",
}

type Obfuscate struct{}

func (Obfuscate) Data() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "obfuscate",
		Description: "Obfuscate Lua code using Prometheus",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionAttachment,
				Name:        "file",
				Description: "Lua file to obfuscate (.lua)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "preset",
				Description: "Obfuscation strength preset",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "🟢 Weak - Fast, light obfuscation", Value: "weak"},
					{Name: "🟡 Medium - Balanced obfuscation", Value: "medium"},
					{Name: "🔴 Strong - Maximum protection (slower)", Value: "strong"},
					{Name: "📦 Minify - Only minification", Value: "minify"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "output_name",
				Description: "Custom output filename (without extension)",
			},
		},
	}
}

func (Obfuscate) Run(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := optionMap(i)
	attachment := attachmentOption(i, opts, "file")

	if attachment == nil {
		return replyEphemeral(s, i, "❌ **Error:** Please upload a `.lua` file.")
	}

	if !strings.HasSuffix(attachment.Filename, ".lua") {
		return replyEphemeral(s, i, "❌ **Error:** Please upload a `.lua` file.")
	}

	if int64(attachment.Size) > state.Config.Obfuscator.MaxFileSize {
		maxSizeMB := float64(state.Config.Obfuscator.MaxFileSize) / 1024 / 1024
		return replyEphemeral(s, i, fmt.Sprintf("❌ **Error:** File too large. Maximum size is %.2fMB.", maxSizeMB))
	}

	preset := stringOption(opts, "preset")

	if preset == "" {
		preset = "strong"
	}

	if err := deferReply(s, i, false); err != nil {
		return err
	}

	src, err := downloadAttachment(state.Context, state.HTTPClient, attachment.URL)

	if err != nil {
		state.Logger.Error("Failed to download lua attachment", zap.Error(err), zap.String("url", attachment.URL))
		return editReply(s, i, obfuscationFailed("Failed to download file."))
	}

	out, elapsed, err := state.Obfuscator.Run(state.Context, src, preset)

	if err != nil {
		state.Logger.Error("Obfuscation failed",
			zap.Error(err),
			zap.String("userId", interactionUserID(i)),
			zap.String("file", attachment.Filename),
			zap.String("preset", preset),
		)

		return editReply(s, i, obfuscationFailed(obfuscationErrorMessage(err)))
	}

	outputName := outputFileName(attachment.Filename, stringOption(opts, "output_name"))

	content := strings.Join([]string{
		"✅ **Obfuscation Complete!**",
		"",
		fmt.Sprintf("📄 **File:** `%s`", attachment.Filename),
		fmt.Sprintf("🔒 **Preset:** %s %s", presetEmojis[preset], obfuscator.Presets[preset]),
		fmt.Sprintf("⏱️ **Duration:** %.2fs", elapsed.Seconds()),
		fmt.Sprintf("📊 **Size:** %s → %s (%s)", formatBytes(len(src)), formatBytes(len(out)), sizeChange(len(src), len(out))),
		"",
		"*Powered by Prometheus Lua Obfuscator*",
	}, "\n")

	state.Logger.Info("Obfuscation complete",
		zap.String("userId", interactionUserID(i)),
		zap.String("file", attachment.Filename),
		zap.String("preset", preset),
		zap.Duration("duration", elapsed),
	)

	return editReplyComplex(s, i, &discordgo.WebhookEdit{
		Content: &content,
		Files: []*discordgo.File{
			{
				Name:   outputName,
				Reader: bytes.NewReader(out),
			},
		},
	})
}

func downloadAttachment(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func obfuscationFailed(msg string) string {
	return strings.Join([]string{
		"❌ **Obfuscation Failed**",
		"",
		"**Error:** " + msg,
		"",
		"*If this issue persists, please contact support.*",
	}, "\n")
}

func obfuscationErrorMessage(err error) string {
	switch {
	case errors.Is(err, obfuscator.ErrPrometheusEnv):
		return "Prometheus is not properly installed. Please contact an administrator."
	case errors.Is(err, obfuscator.ErrLuaNotFound):
		return "Lua interpreter not found. Please contact an administrator."
	case errors.Is(err, obfuscator.ErrTimeout):
		return "Obfuscation timed out. Try using a weaker preset or smaller file."
	case errors.Is(err, obfuscator.ErrEmptyInput):
		return "File is empty."
	case strings.Contains(err.Error(), "syntax error") || strings.Contains(err.Error(), "parse"):
		return "Your Lua code contains syntax errors. Please fix them and try again."
	default:
		return err.Error()
	}
}

func outputFileName(original, custom string) string {
	if custom != "" {
		return custom + ".lua"
	}

	return strings.TrimSuffix(original, ".lua") + "_obfuscated.lua"
}

func formatBytes(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
	}
}

func sizeChange(before, after int) string {
	change := float64(after-before) / float64(before) * 100

	if change > 0 {
		return fmt.Sprintf("+%.1f%%", change)
	}

	return fmt.Sprintf("%.1f%%", change)
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}

	if i.User != nil {
		return i.User.ID
	}

	return ""
}
