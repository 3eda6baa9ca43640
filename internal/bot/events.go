package bot

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/szymonsamus/gripendor/internal/model"
)

// parseEventTime combines the user's date, time and UTC-offset choice into a
// UTC instant.
func parseEventTime(date, clock, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %s: %w", zone, err)
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// handleCreateEvent handles /create-event: stores the event (upserting on
// the unique guild+name pair), posts the announcement embed with RSVP and
// admin buttons, and records the posted message id.
func (b *Bot) handleCreateEvent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	opts := optionMap(data)

	missionType := opts["type"].StringValue()
	name := opts["name"].StringValue()
	channel := opts["channel"].ChannelValue(s)
	summary := opts["summary"].StringValue()
	description := opts["description"].StringValue()
	date := opts["date"].StringValue()
	clock := opts["time"].StringValue()
	zone := opts["timezone"].StringValue()
	var thumbnailURL string
	if att := attachmentOption(data, opts, "thumbnail"); att != nil {
		thumbnailURL = att.URL
	}

	if len(summary) > 250 {
		respondWithMessage(s, i, "The summary must be 250 characters or less.")
		return
	}

	eventDate, err := parseEventTime(date, clock, zone)
	if err != nil {
		respondWithMessage(s, i, "Could not parse the event date and time. Use YYYY-MM-DD and HH:MM (24-hour).")
		return
	}

	var imageURLs []string
	for _, optName := range []string{"briefing", "briefing_2", "briefing_3"} {
		if att := attachmentOption(data, opts, optName); att != nil {
			imageURLs = append(imageURLs, att.URL)
		}
	}

	deferResponse(s, i)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := model.Event{
		GuildID:      i.GuildID,
		GameName:     missionType,
		Name:         name,
		ChannelID:    channel.ID,
		Summary:      summary,
		Description:  description,
		EventDate:    eventDate,
		ThumbnailURL: thumbnailURL,
		ImageURLs:    imageURLs,
	}
	eventID, err := b.events.Upsert(ctx, event)
	if err != nil {
		b.log.Error("save event", "guild", i.GuildID, "event", name, "error", err)
		b.editResponse(s, i, "There was an error creating the event.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       name,
		Description: summary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Mission Type:", Value: missionType, Inline: true},
			{Name: "Date and Time", Value: fmt.Sprintf("<t:%d:f> (This date & time is displayed in your local time!)", eventDate.Unix()), Inline: false},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Use the buttons below to let us know whether you can attend.",
		},
	}
	if thumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: thumbnailURL}
	}

	msg, err := s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: fmt.Sprintf("attend_%d", eventID),
						Label:    "Attend",
						Style:    discordgo.SuccessButton,
					},
					discordgo.Button{
						CustomID: fmt.Sprintf("decline_%d", eventID),
						Label:    "Decline",
						Style:    discordgo.DangerButton,
					},
					discordgo.Button{
						CustomID: fmt.Sprintf("cancel_%d", eventID),
						Label:    "Cancel Event",
						Style:    discordgo.SecondaryButton,
					},
					discordgo.Button{
						CustomID: fmt.Sprintf("finish_%d", eventID),
						Label:    "Finish Event",
						Style:    discordgo.PrimaryButton,
					},
				},
			},
		},
	})
	if err != nil {
		b.log.Error("post event message", "guild", i.GuildID, "event", eventID, "error", err)
		b.editResponse(s, i, "The event was saved but the announcement could not be posted.")
		return
	}
	if err := b.events.SetMessageID(ctx, eventID, msg.ID); err != nil {
		b.log.Error("store event message id", "event", eventID, "error", err)
	}

	b.editResponse(s, i, "Event created successfully!")
}

// parseEventID converts the id carried in a button/modal custom id.
func parseEventID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil
}

// handleRSVP records a yes/no response from the event buttons.
func (b *Bot) handleRSVP(s *discordgo.Session, i *discordgo.InteractionCreate, rawID, response string) {
	eventID, ok := parseEventID(rawID)
	if !ok {
		respondWithMessage(s, i, "This event could not be found.")
		return
	}
	if i.Member == nil || i.Member.User == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.events.SaveRSVP(ctx, eventID, i.Member.User.ID, response); err != nil {
		b.log.Error("save rsvp", "event", eventID, "user", i.Member.User.ID, "error", err)
		respondWithMessage(s, i, "Something went wrong while recording your response.")
		return
	}
	if response == model.RSVPYes {
		respondWithMessage(s, i, "You are marked as attending. See you there!")
	} else {
		respondWithMessage(s, i, "You are marked as not attending.")
	}
}

// handleCancelEvent deletes the event row and the announcement message.
// Only holders of the configured admin role may cancel.
func (b *Bot) handleCancelEvent(s *discordgo.Session, i *discordgo.InteractionCreate, rawID string) {
	eventID, ok := parseEventID(rawID)
	if !ok {
		respondWithMessage(s, i, "This event could not be found.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok := b.requireAdminRole(ctx, s, i); !ok {
		return
	}

	event, err := b.events.GetByID(ctx, eventID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondWithMessage(s, i, "This event no longer exists.")
		} else {
			b.log.Error("load event", "event", eventID, "error", err)
			respondWithMessage(s, i, "Something went wrong while cancelling the event.")
		}
		return
	}
	if err := b.events.Delete(ctx, eventID); err != nil {
		b.log.Error("delete event", "event", eventID, "error", err)
		respondWithMessage(s, i, "Something went wrong while cancelling the event.")
		return
	}
	if event.MessageID != "" {
		if err := s.ChannelMessageDelete(event.ChannelID, event.MessageID); err != nil {
			b.log.Warn("delete event message", "event", eventID, "error", err)
		}
	}
	respondWithMessage(s, i, fmt.Sprintf("Event %q has been cancelled.", event.Name))
}

// handleFinishEvent opens the debrief modal.  Only admin-role holders may
// finish an event.
func (b *Bot) handleFinishEvent(s *discordgo.Session, i *discordgo.InteractionCreate, rawID string) {
	eventID, ok := parseEventID(rawID)
	if !ok {
		respondWithMessage(s, i, "This event could not be found.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, ok := b.requireAdminRole(ctx, s, i); !ok {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: fmt.Sprintf("debrief_%d", eventID),
			Title:    "Event Debrief",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "debrief_text",
							Label:       "How did the event go?",
							Style:       discordgo.TextInputParagraph,
							Placeholder: "Summarise the outcome, losses, highlights...",
							Required:    true,
							MaxLength:   2000,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.log.Error("open debrief modal", "event", eventID, "error", err)
	}
}

// handleDebriefSubmit stores the debrief text and removes the buttons from
// the announcement message so the event reads as concluded.
func (b *Bot) handleDebriefSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, rawID string) {
	eventID, ok := parseEventID(rawID)
	if !ok {
		respondWithMessage(s, i, "This event could not be found.")
		return
	}

	data := i.ModalSubmitData()
	var debrief string
	for _, row := range data.Components {
		if ar, ok := row.(*discordgo.ActionsRow); ok {
			for _, comp := range ar.Components {
				if ti, ok := comp.(*discordgo.TextInput); ok && ti.CustomID == "debrief_text" {
					debrief = ti.Value
				}
			}
		}
	}
	if debrief == "" {
		respondWithMessage(s, i, "The debrief text was empty; nothing was saved.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := b.events.SetDebrief(ctx, eventID, debrief); err != nil {
		b.log.Error("store debrief", "event", eventID, "error", err)
		respondWithMessage(s, i, "Something went wrong while saving the debrief.")
		return
	}

	event, err := b.events.GetByID(ctx, eventID)
	if err == nil && event.MessageID != "" {
		empty := []discordgo.MessageComponent{}
		if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    event.ChannelID,
			ID:         event.MessageID,
			Components: &empty,
		}); err != nil {
			b.log.Warn("strip event buttons", "event", eventID, "error", err)
		}
	}

	respondWithMessage(s, i, "Debrief saved. The event is now marked as finished.")
}
