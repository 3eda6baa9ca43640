package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// missionTypes are the fixed choices for the /create-event type option.
var missionTypes = []string{
	"Infiltration", "Extraction", "Escort", "Reconnaissance", "Sabotage",
	"Search & Rescue", "Defence", "Capture & Hold", "Elimination",
	"Supply Run", "HVT Securement", "Survival", "Counter Insurgency", "Other",
}

// timeZones maps the UTC-offset labels offered to users onto IANA zone
// names.  The Etc/GMT zones use POSIX sign convention, so UTC-05:00 is
// Etc/GMT+5.
var timeZones = []struct {
	Label string
	Zone  string
}{
	{"UTC-12:00", "Etc/GMT+12"}, {"UTC-11:00", "Etc/GMT+11"}, {"UTC-10:00", "Etc/GMT+10"},
	{"UTC-09:00", "Etc/GMT+9"}, {"UTC-08:00", "Etc/GMT+8"}, {"UTC-07:00", "Etc/GMT+7"},
	{"UTC-06:00", "Etc/GMT+6"}, {"UTC-05:00", "Etc/GMT+5"}, {"UTC-04:00", "Etc/GMT+4"},
	{"UTC-03:00", "Etc/GMT+3"}, {"UTC-02:00", "Etc/GMT+2"}, {"UTC-01:00", "Etc/GMT+1"},
	{"UTC+00:00", "Etc/GMT"},
	{"UTC+01:00", "Etc/GMT-1"}, {"UTC+02:00", "Etc/GMT-2"}, {"UTC+03:00", "Etc/GMT-3"},
	{"UTC+04:00", "Etc/GMT-4"}, {"UTC+05:00", "Etc/GMT-5"}, {"UTC+06:00", "Etc/GMT-6"},
	{"UTC+07:00", "Etc/GMT-7"}, {"UTC+08:00", "Etc/GMT-8"}, {"UTC+09:00", "Etc/GMT-9"},
	{"UTC+10:00", "Etc/GMT-10"}, {"UTC+11:00", "Etc/GMT-11"}, {"UTC+12:00", "Etc/GMT-12"},
}

func missionTypeChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(missionTypes))
	for i, mt := range missionTypes {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: mt, Value: mt}
	}
	return choices
}

func timeZoneChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(timeZones))
	for i, tz := range timeZones {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: tz.Label, Value: tz.Zone}
	}
	return choices
}

// roleOptions generates a run of optional role options named
// <prefix>_1..<prefix>_n.
func roleOptions(prefix, description string, n int) []*discordgo.ApplicationCommandOption {
	opts := make([]*discordgo.ApplicationCommandOption, 0, n)
	for i := 1; i <= n; i++ {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        fmt.Sprintf("%s_%d", prefix, i),
			Description: fmt.Sprintf("%s %d", description, i),
			Required:    false,
		})
	}
	return opts
}

// imageOptions generates a run of attachment options image1..imageN; only
// the first is required.
func imageOptions(n int) []*discordgo.ApplicationCommandOption {
	opts := make([]*discordgo.ApplicationCommandOption, 0, n)
	for i := 1; i <= n; i++ {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        fmt.Sprintf("image%d", i),
			Description: "The image containing the attendance list",
			Required:    i == 1,
		})
	}
	return opts
}

// Slash command definitions
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	setupOptions := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "channel",
			Description: "Default bot channel for confirmations (should be an admin channel)",
			Required:    true,
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildText,
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "color",
			Description: "The color palette (e.g., #FF0000)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "title",
			Description: "The title for the frontend dashboard (MAXIMUM: 25 characters)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "password",
			Description: "Password to access the dashboard (do NOT reuse a personal password)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "primary_role",
			Description: "All members holding this role are tracked (i.e. default member role)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "admin_role",
			Description: "Role required to run admin commands",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "icon",
			Description: "Guild icon (MAX 400x400px | formats: .jpg, .png, .webp, .svg)",
			Required:    false,
		},
	}
	setupOptions = append(setupOptions, roleOptions("additional_role", "Additional role", 10)...)

	eventOptions := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "Select mission type.",
			Required:    true,
			Choices:     missionTypeChoices(),
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "name",
			Description: "Name of the event/mission.",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionChannel,
			Name:        "channel",
			Description: "The channel in which the event/mission will be posted.",
			Required:    true,
			ChannelTypes: []discordgo.ChannelType{
				discordgo.ChannelTypeGuildText,
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "summary",
			Description: "A brief summary of the event/mission. (250 characters max)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "description",
			Description: "A full briefing of the event/mission.",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "date",
			Description: "The date of the event/mission: (YYYY-MM-DD)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "time",
			Description: "The time of the event/mission: (HH:MM in 24-hour format)",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "timezone",
			Description: "Your timezone in UTC format.",
			Required:    true,
			Choices:     timeZoneChoices(),
		},
		{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "thumbnail",
			Description: "Thumbnail image for the event/mission.",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "briefing",
			Description: "Briefing image for the event/mission.",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "briefing_2",
			Description: "Briefing image for the event/mission.",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionAttachment,
			Name:        "briefing_3",
			Description: "Briefing image for the event/mission.",
			Required:    false,
		},
	}

	presetOptions := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "party-size",
			Description: "EXAMPLE: party of 6 with 18 attending members creates 3 parties.",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "preset-name",
			Description: "Name for your preset (MUST BE DISTINCT | 40 characters maximum).",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "game-selection",
			Description: "Select the role for the game this preset is for.",
			Required:    true,
		},
	}
	presetOptions = append(presetOptions, roleOptions("preset_role", "Select preset role", 9)...)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "setup",
			Description: "Setup the bot configuration",
			Options:     setupOptions,
		},
		{
			Name:        "add-roles",
			Description: "Add additional roles. (These roles can be used for partymaking functionality)",
			Options:     roleOptions("additional_role", "Additional role", 15),
		},
		{
			Name:        "attendance",
			Description: "Upload image of usernames to record attendance",
			Options:     imageOptions(5),
		},
		{
			Name:        "create-event",
			Description: "Create an event",
			Options:     eventOptions,
		},
		{
			Name:        "create-preset",
			Description: "Create a party preset. (Preset affects individual parties, adjust party size accordingly.)",
			Options:     presetOptions,
		},
		{
			Name:        "customise-dashboard",
			Description: "Customise the dashboard for your server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "color",
					Description: "Choose your color scheme.",
					Required:    false,
					Choices:     colorChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "icon",
					Description: "Guild icon (MAXIMUM 400x400px) (OPTIMAL: .PNG with transparent background)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "banner",
					Description: "Guild banner (RECOMMENDED: 2000x600px) (OPTIMAL FORMAT: PNG)",
					Required:    false,
				},
			},
		},
		{
			Name:        "party",
			Description: "Build parties from an event's attendees using a saved preset",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "event",
					Description: "Name of the event to build parties for.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "preset",
					Description: "Name of the preset to apply.",
					Required:    true,
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord.  When a
// command guild is configured the commands are scoped to it (instant
// availability, useful while iterating); otherwise they are global.
func (b *Bot) registerCommands() error {
	b.log.Info("registering slash commands")

	commandDefinitions := b.getCommandDefinitions()
	registered := make([]*discordgo.ApplicationCommand, 0, len(commandDefinitions))

	for _, cmd := range commandDefinitions {
		rc, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			b.config.CommandGuild,
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		registered = append(registered, rc)
		b.log.Debug("registered command", "name", cmd.Name)
	}

	b.commands = registered
	b.log.Info("slash commands registered", "count", len(registered))
	return nil
}

// removeCommands removes all registered slash commands.
func (b *Bot) removeCommands() {
	for _, cmd := range b.commands {
		err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.config.CommandGuild, cmd.ID)
		if err != nil {
			b.log.Error("failed to remove command", "name", cmd.Name, "error", err)
		}
	}
}
