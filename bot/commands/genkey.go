package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/issuance"
	"github.com/Vousmeveyoz/discord-jixabot/state"
	"github.com/Vousmeveyoz/discord-jixabot/types"
)

const scriptID = "DONATE_PLATFORM"

// Delivery files live under this object storage directory.
const deliveryDir = "delivery"

type GenKey struct{}

func (GenKey) Data() *discordgo.ApplicationCommand {
	administrator := int64(discordgo.PermissionAdministrator)
	dmPermission := false
	minRate := float64(1)

	return &discordgo.ApplicationCommand{
		Name:                     "genkey",
		Description:              "Generate a premium license key and send to user",
		DefaultMemberPermissions: &administrator,
		DMPermission:             &dmPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "roblox_id",
				Description: "Roblox User ID (Owner Map)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Discord user who purchased the license",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "files",
				Description: "File names to attach (comma separated, e.g: script.lua,readme.txt)",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "tutorial_url",
				Description: "Tutorial link included in the purchaser DM",
			},
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "donation_channel",
				Description: "Channel whose BagiBagi donations are relayed for this customer",
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "koin_rate",
				Description: "Rupiah per koin for this customer",
				MinValue:    &minRate,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "customer_name",
				Description: "Display name for the donation customer",
			},
		},
	}
}

func (GenKey) Run(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.GuildID == "" {
		return replyEphemeral(s, i, "**This command can only be used in a server!**")
	}

	if !guildAllowed(i.GuildID) {
		state.Logger.Warn("Unauthorized /genkey attempt", zap.String("guildId", i.GuildID), zap.String("userId", i.Member.User.ID))
		return replyEphemeral(s, i, accessDenied)
	}

	if !memberHasPermission(i, discordgo.PermissionAdministrator) {
		return replyEphemeral(s, i, "**You don't have permission to use this command!**\n> Required: Administrator")
	}

	if err := deferReply(s, i, false); err != nil {
		return err
	}

	opts := optionMap(i)

	robloxID := stringOption(opts, "roblox_id")

	var purchaser *discordgo.User

	if opt, ok := opts["user"]; ok {
		purchaser = opt.UserValue(s)
	}

	if purchaser == nil {
		return editReply(s, i, "Failed to generate license. Please try again.")
	}

	tutorialURL := stringOption(opts, "tutorial_url")

	if tutorialURL != "" && !strings.HasPrefix(tutorialURL, "http://") && !strings.HasPrefix(tutorialURL, "https://") {
		return editReply(s, i, "**Invalid tutorial URL.**\n> Must start with http:// or https://")
	}

	var donationChannelID string

	if opt, ok := opts["donation_channel"]; ok {
		donationChannelID = opt.ChannelValue(nil).ID
	}

	files, missing := loadDeliveryFiles(s, stringOption(opts, "files"))

	courier := &dmCourier{s: s, userID: purchaser.ID, files: files}

	orch := &issuance.Orchestrator{
		Licenses:        state.Licenses,
		Customers:       state.Customers,
		Registrar:       state.Registrar,
		Perms:           &channelPerms{s: s},
		Courier:         courier,
		Logger:          state.Logger,
		DefaultKoinRate: state.Config.BagiBagi.DefaultRate,
	}

	res, err := orch.Issue(state.Context, issuance.Request{
		RobloxID:          robloxID,
		DiscordID:         purchaser.ID,
		DiscordUsername:   purchaser.Username,
		TutorialURL:       tutorialURL,
		DonationChannelID: donationChannelID,
		CustomerName:      stringOption(opts, "customer_name"),
		KoinRate:          intOption(opts, "koin_rate"),
	})

	if err != nil {
		if errors.Is(err, issuance.ErrBadRobloxID) {
			return editReply(s, i, "**Invalid Roblox ID.**\n> Must be a numeric user ID.")
		}

		state.Logger.Error("Failed to generate license", zap.Error(err))
		return editReply(s, i, "Failed to generate license. Please try again.")
	}

	channelEmbed := channelSummaryEmbed(res, purchaser.ID, len(files), missing)

	if res.DMFailed {
		content := dmFailedContent(purchaser.ID, res.License)

		return editReplyComplex(s, i, &discordgo.WebhookEdit{
			Content: &content,
			Embeds:  &[]*discordgo.MessageEmbed{channelEmbed},
		})
	}

	content := fmt.Sprintf("License successfully sent to <@%s>!", purchaser.ID)

	state.Logger.Info("License issued",
		zap.String("robloxId", res.License.RobloxID),
		zap.String("discordId", purchaser.ID),
		zap.Int("files", len(files)),
		zap.String("customer", res.Customer.String()),
	)

	return editReplyComplex(s, i, &discordgo.WebhookEdit{
		Content: &content,
		Embeds:  &[]*discordgo.MessageEmbed{channelEmbed},
	})
}

// loadDeliveryFiles resolves a comma separated file list against object
// storage. Missing files are skipped and reported, not fatal.
func loadDeliveryFiles(s *discordgo.Session, names string) ([]*discordgo.File, []string) {
	var (
		files   []*discordgo.File
		missing []string
	)

	for _, name := range splitFileNames(names) {
		buf, err := state.ObjectStorage.Read(state.Context, deliveryDir, name)

		if err != nil {
			state.Logger.Warn("Delivery file not found", zap.String("file", name), zap.Error(err))
			missing = append(missing, name)
			continue
		}

		files = append(files, &discordgo.File{
			Name:   name,
			Reader: buf,
		})
	}

	return files, missing
}

func splitFileNames(names string) []string {
	var out []string

	for _, part := range strings.Split(names, ",") {
		part = strings.TrimSpace(part)

		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

// channelPerms checks whether the bot can watch and react in a channel,
// which the donation listener needs.
type channelPerms struct {
	s *discordgo.Session
}

func (p *channelPerms) CanRelayIn(channelID string) (bool, error) {
	perms, err := p.s.UserChannelPermissions(state.BotUser.ID, channelID)

	if err != nil {
		return false, err
	}

	need := int64(discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory | discordgo.PermissionAddReactions)

	return perms&need == need, nil
}

// dmCourier sends the purchaser their key over DM.
type dmCourier struct {
	s      *discordgo.Session
	userID string
	files  []*discordgo.File
}

func (c *dmCourier) DeliverToPurchaser(l types.License) bool {
	ch, err := c.s.UserChannelCreate(c.userID)

	if err != nil {
		state.Logger.Warn("Failed to open DM channel", zap.Error(err), zap.String("userId", c.userID))
		return true
	}

	_, err = c.s.ChannelMessageSendComplex(ch.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{dmEmbed(l, len(c.files))},
		Files:  c.files,
	})

	if err != nil {
		state.Logger.Warn("Failed to send license DM", zap.Error(err), zap.String("userId", c.userID))
		return true
	}

	return false
}

func dmEmbed(l types.License, fileCount int) *discordgo.MessageEmbed {
	howToUse := "`1.` Download all attached files below\n" +
		"`2.` Copy your license key above\n" +
		"`3.` Follow the setup instructions in the files\n" +
		"`4.` Paste your key\n" +
		"`5.` Enjoy your features!\n\n" +
		"**Keep this key private - do not share!**"

	fields := []*discordgo.MessageEmbedField{
		{Name: "Your Assets", Value: fmt.Sprintf("```yaml\nScript: %s\n```", scriptID)},
		{Name: "Roblox Account", Value: fmt.Sprintf("**Owner Map ID:** `%s`", l.RobloxID)},
		{Name: "Your License Key", Value: fmt.Sprintf("```%s```", l.Key)},
		{Name: "Donation Webhook", Value: webhookFieldValue(l)},
	}

	if l.TutorialURL != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Tutorial",
			Value: *l.TutorialURL,
		})
	}

	fields = append(fields, &discordgo.MessageEmbedField{Name: "How to Use", Value: howToUse})

	return &discordgo.MessageEmbed{
		Color:       0x00FF87,
		Title:       "YOUR LICENSE",
		Description: fmt.Sprintf("> Your license has been activated.\n> %d file(s) are attached to this message.", fileCount),
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "License System"},
	}
}

// webhookFieldValue renders the customer's webhook credentials, or a
// notice when provisioning failed and no credentials exist yet.
func webhookFieldValue(l types.License) string {
	if l.WebhookUserKey == nil || l.WebhookURL == nil {
		return "Credentials could not be provisioned. An administrator will send them separately."
	}

	return fmt.Sprintf("**User Key:** `%s`\n**Webhook URL:** %s", *l.WebhookUserKey, *l.WebhookURL)
}

// dmFailedContent is the channel fallback when the purchaser's DMs are
// closed. It must carry everything the DM would have: key and webhook
// credentials.
func dmFailedContent(discordID string, l types.License) string {
	content := fmt.Sprintf("**License generated but couldn't send DM!**\n\n<@%s> has DMs disabled. Please send them the key manually:\n```%s```", discordID, l.Key)

	if l.WebhookUserKey != nil && l.WebhookURL != nil {
		content += fmt.Sprintf("\nWebhook user key: `%s`\nWebhook URL: %s", *l.WebhookUserKey, *l.WebhookURL)
	}

	return content
}

func channelSummaryEmbed(res *issuance.Result, discordID string, fileCount int, missing []string) *discordgo.MessageEmbed {
	delivery := fmt.Sprintf("`` License key sent via DM\n`` %d file(s) delivered\n`` User notified successfully", fileCount)

	if res.DMFailed {
		delivery = fmt.Sprintf("`` DM failed, key posted in channel\n`` %d file(s) prepared", fileCount)
	}

	if len(missing) > 0 {
		delivery += "\n`` Missing files: " + strings.Join(missing, ", ")
	}

	webhook := "Registered"

	if res.WebhookErr != nil {
		webhook = "Failed: " + res.WebhookErr.Error()
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Package Information", Value: fmt.Sprintf("```yaml\nScript: %s\n```", scriptID)},
		{Name: "Owner Details", Value: fmt.Sprintf("**Roblox ID:** `%s`\n**Discord User:** <@%s>", res.License.RobloxID, discordID)},
		{Name: "Delivery Status", Value: delivery},
		{Name: "Webhook", Value: webhook, Inline: true},
	}

	if res.Customer != issuance.CustomerNotRequested {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Donation Customer",
			Value:  res.Customer.String(),
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Color:     0x00FF87,
		Title:     "LICENSE ACTIVATED",
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "License System"},
	}
}
