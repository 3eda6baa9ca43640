package bot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/szymonsamus/gripendor/internal/party"
)

// handleParty handles /party: applies a saved preset to an event's yes-RSVP
// attendees and posts the generated parties to the event's channel.
func (b *Bot) handleParty(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok := b.requireAdminRole(ctx, s, i); !ok {
		return
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data)
	eventName := opts["event"].StringValue()
	presetName := opts["preset"].StringValue()

	deferResponse(s, i)

	event, err := b.events.GetByName(ctx, i.GuildID, eventName)
	if err != nil {
		if err == sql.ErrNoRows {
			b.editResponse(s, i, fmt.Sprintf("No event named %q was found.", eventName))
		} else {
			b.log.Error("load event", "guild", i.GuildID, "event", eventName, "error", err)
			b.editResponse(s, i, "Something went wrong while building the parties.")
		}
		return
	}
	preset, err := b.presets.Get(ctx, i.GuildID, presetName)
	if err != nil {
		if err == sql.ErrNoRows {
			b.editResponse(s, i, fmt.Sprintf("No preset named %q was found.", presetName))
		} else {
			b.log.Error("load preset", "guild", i.GuildID, "preset", presetName, "error", err)
			b.editResponse(s, i, "Something went wrong while building the parties.")
		}
		return
	}

	attendees, err := b.events.ListAttendees(ctx, event.ID, i.GuildID)
	if err != nil {
		b.log.Error("load attendees", "event", event.ID, "error", err)
		b.editResponse(s, i, "Something went wrong while building the parties.")
		return
	}
	if len(attendees) == 0 {
		b.editResponse(s, i, "Nobody has RSVPed yes to this event yet.")
		return
	}

	parties := party.Build(preset, attendees)

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Parties for %s", event.Name),
		Description: fmt.Sprintf("Preset: %s | %d attendees split into %d parties of up to %d.", preset.Name, len(attendees), len(parties), preset.PartySize),
	}
	for idx, p := range parties {
		var sb strings.Builder
		for _, m := range p.Members {
			sb.WriteString(fmt.Sprintf("%s (%s)\n", m.Username, m.Role))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Party %d", idx+1),
			Value:  sb.String(),
			Inline: true,
		})
	}

	if _, err := s.ChannelMessageSendEmbed(event.ChannelID, embed); err != nil {
		b.log.Error("post parties", "event", event.ID, "error", err)
		b.editResponse(s, i, "The parties were built but could not be posted.")
		return
	}
	b.editResponse(s, i, fmt.Sprintf("Posted %d parties to <#%s>.", len(parties), event.ChannelID))
}
