package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/szymonsamus/gripendor/internal/ocr"
)

// handleAttendance handles /attendance: runs the OCR pipeline over up to
// five screenshots and reports which names were recorded and which could not
// be matched to a tracked member.
func (b *Bot) handleAttendance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	opts := optionMap(data)

	var urls []string
	for idx := 1; idx <= 5; idx++ {
		if att := attachmentOption(data, opts, fmt.Sprintf("image%d", idx)); att != nil {
			urls = append(urls, att.URL)
		}
	}
	if len(urls) == 0 {
		respondWithMessage(s, i, "Please upload an image containing the attendance list.")
		return
	}

	deferResponse(s, i)

	// OCR over several images can exceed the interaction's initial window,
	// hence the deferred reply and the generous timeout here.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stored, err := b.members.ListByGuild(ctx, i.GuildID)
	if err != nil {
		b.log.Error("load tracked members", "guild", i.GuildID, "error", err)
		b.editResponse(s, i, "An error occurred while processing the images. Please try again.")
		return
	}
	members := make([]ocr.GuildMember, 0, len(stored))
	for _, m := range stored {
		members = append(members, ocr.GuildMember{UserID: m.UserID, DisplayName: m.Username})
	}

	result, err := b.pipeline.ProcessImages(ctx, i.GuildID, urls, members)
	if err != nil {
		b.log.Error("attendance pipeline", "guild", i.GuildID, "error", err)
		b.editResponse(s, i, "An error occurred while processing the images. Please try again.")
		return
	}

	if len(result.Matched) == 0 {
		b.editResponse(s, i, "No names were detected in the image.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Attendance recorded for:\n")
	for idx, m := range result.Matched {
		sb.WriteString(fmt.Sprintf("%d. %s\n", idx+1, m.DisplayName))
	}
	if len(result.Unmatched) > 0 {
		sb.WriteString(fmt.Sprintf("\nNo tracked member found for: %s", strings.Join(result.Unmatched, ", ")))
	}
	b.editResponse(s, i, sb.String())
}
