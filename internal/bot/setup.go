package bot

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/szymonsamus/gripendor/internal/model"
	"github.com/szymonsamus/gripendor/internal/utils"
)

// dashboardColors are the fixed palette offered by /customise-dashboard.
var dashboardColors = []struct {
	Label string
	Value string
}{
	{"Sandy Brown (#F19143)", "#F19143"},
	{"Light Sea Blue (#00B9AE)", "#00B9AE"},
	{"Dusty Green (#8FAD88)", "#8FAD88"},
	{"Malachite (#32E875)", "#32E875"},
	{"Rojo Red (#DD0426)", "#DD0426"},
	{"Flax (#F5DD90)", "#F5DD90"},
}

func colorChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(dashboardColors))
	for i, cc := range dashboardColors {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: cc.Label, Value: cc.Value}
	}
	return choices
}

// validImageFormats is the attachment extension whitelist for icons and
// banners.
var validImageFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "svg": true,
}

// checkImageFormat validates an attachment's extension against the
// whitelist.  Returns a user-facing error message, empty when acceptable.
func checkImageFormat(att *discordgo.MessageAttachment) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(att.Filename), "."))
	if !validImageFormats[ext] {
		return "Unsupported image format. Please upload an image in one of the following formats: jpg, jpeg, png, webp, svg"
	}
	return ""
}

// collectRoles gathers the roles supplied through a numbered option run.
func collectRoles(s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, prefix string, n int) []*discordgo.Role {
	var roles []*discordgo.Role
	for idx := 1; idx <= n; idx++ {
		if opt, ok := opts[fmt.Sprintf("%s_%d", prefix, idx)]; ok {
			if role := opt.RoleValue(s, i.GuildID); role != nil {
				roles = append(roles, role)
			}
		}
	}
	return roles
}

// handleSetup handles the /setup command: it saves the guild configuration,
// registers additional roles, announces the result in the configured channel
// and triggers an immediate reconciliation so the dashboard is populated
// without waiting for the next tick.
func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		respondWithMessage(s, i, "You do not have the permission to use this command.")
		return
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data)

	channel := opts["channel"].ChannelValue(s)
	color := opts["color"].StringValue()
	title := opts["title"].StringValue()
	password := opts["password"].StringValue()
	primaryRole := opts["primary_role"].RoleValue(s, i.GuildID)
	adminRole := opts["admin_role"].RoleValue(s, i.GuildID)
	icon := attachmentOption(data, opts, "icon")

	if len(title) > 25 {
		respondWithMessage(s, i, "The title for your server dashboard is too long! (MAXIMUM: 25 characters)")
		return
	}

	var iconURL string
	if icon != nil {
		if msg := checkImageFormat(icon); msg != "" {
			respondWithMessage(s, i, msg)
			return
		}
		iconURL = icon.URL
	}

	additionalRoles := collectRoles(s, i, opts, "additional_role", 10)

	hash, err := utils.HashPassword(password, b.config.BcryptCost)
	if err != nil {
		respondWithMessage(s, i, "An error occurred while securing the dashboard password.")
		return
	}

	deferResponse(s, i)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := model.Guild{
		ID:            i.GuildID,
		ChannelID:     channel.ID,
		Color:         color,
		PrimaryRoleID: primaryRole.ID,
		AdminRoleID:   adminRole.ID,
		IconURL:       iconURL,
		Title:         title,
		PasswordHash:  hash,
	}
	if err := b.guilds.Upsert(ctx, cfg); err != nil {
		b.log.Error("save guild configuration", "guild", i.GuildID, "error", err)
		b.editResponse(s, i, "An error has occurred during the setup process.")
		return
	}
	for _, role := range additionalRoles {
		if err := b.roles.Save(ctx, i.GuildID, role.ID, role.Name); err != nil {
			b.log.Error("save role", "guild", i.GuildID, "role", role.ID, "error", err)
			b.editResponse(s, i, "An error has occurred during the setup process.")
			return
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: title,
		Description: fmt.Sprintf(
			"Configuration saved!\n\n"+
				"You can now start using the Gripendor bot.\n"+
				"The bot's default channel has been set to: <#%s>\n\n"+
				"Your dashboard is customised with the following settings:\n"+
				"Title: %s\nDefault dashboard color: %s\n\n"+
				"Your main members will be tracked with the following role: <@&%s>\n"+
				"Setup complete with %d additional roles.",
			channel.ID, title, color, primaryRole.ID, len(additionalRoles)),
	}
	if iconURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: iconURL}
	}
	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		b.log.Warn("send setup confirmation", "guild", i.GuildID, "error", err)
	}

	if b.reconciler != nil {
		b.reconciler.ReconcileGuild(ctx, cfg)
	}

	b.editResponse(s, i, "Setup completed successfully.")
}

// handleAddRoles handles /add-roles: registers up to 15 additional roles for
// the partymaking functionality.
func (b *Bot) handleAddRoles(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, ok := b.requireAdminRole(ctx, s, i)
	if !ok {
		return
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data)
	roles := collectRoles(s, i, opts, "additional_role", 15)
	if len(roles) == 0 {
		respondWithMessage(s, i, "Select at least one role to add.")
		return
	}

	deferResponse(s, i)

	var lines []string
	for _, role := range roles {
		if err := b.roles.Save(ctx, i.GuildID, role.ID, role.Name); err != nil {
			b.log.Error("save role", "guild", i.GuildID, "role", role.ID, "error", err)
			b.editResponse(s, i, "Something went wrong while saving the roles.")
			return
		}
		lines = append(lines, fmt.Sprintf("Name: %s | ID: %s", role.Name, role.ID))
	}

	embed := &discordgo.MessageEmbed{
		Title: "Successfully added new roles.",
		Description: fmt.Sprintf("You have added a total of: %d new roles.\n\nHere is a breakdown of the roles you added:\n%s",
			len(roles), strings.Join(lines, "\n")),
	}
	if _, err := s.ChannelMessageSendEmbed(cfg.ChannelID, embed); err != nil {
		b.log.Warn("send add-roles confirmation", "guild", i.GuildID, "error", err)
	}
	b.editResponse(s, i, fmt.Sprintf("Added %d roles.", len(roles)))
}

// handleCustomise handles /customise-dashboard: a partial update of the
// guild's color, icon and banner; columns left out keep their values.
func (b *Bot) handleCustomise(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok := b.requireAdminRole(ctx, s, i); !ok {
		return
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data)

	var color string
	if opt, ok := opts["color"]; ok {
		color = opt.StringValue()
	}

	var iconURL, bannerURL string
	if icon := attachmentOption(data, opts, "icon"); icon != nil {
		if msg := checkImageFormat(icon); msg != "" {
			respondWithMessage(s, i, msg)
			return
		}
		iconURL = icon.URL
	}
	if banner := attachmentOption(data, opts, "banner"); banner != nil {
		if msg := checkImageFormat(banner); msg != "" {
			respondWithMessage(s, i, msg)
			return
		}
		bannerURL = banner.URL
	}

	if color == "" && iconURL == "" && bannerURL == "" {
		respondWithMessage(s, i, "Nothing to customise. Provide a color, icon or banner.")
		return
	}

	if err := b.guilds.UpdateCustomisation(ctx, i.GuildID, color, iconURL, bannerURL); err != nil {
		b.log.Error("update customisation", "guild", i.GuildID, "error", err)
		respondWithMessage(s, i, "An error occurred while applying your customisations.")
		return
	}
	respondWithMessage(s, i, "Your customisations have been applied.")
}
