package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/szymonsamus/gripendor/internal/queue"
)

// reminderWindow is how far ahead of an event's start a reminder goes out.
const reminderWindow = time.Hour

// runReminderSweep periodically finds yes-RSVPs whose event starts inside
// the next hour and publishes a reminder message for each.  The flag is
// flipped by the consumer after the DM is delivered, so a pair stays pending
// until delivery actually succeeds.
func (b *Bot) runReminderSweep(ctx context.Context) {
	ticker := time.NewTicker(b.config.ReminderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.log.Info("reminder sweep stopped")
			return
		case <-ticker.C:
			b.sweepReminders(ctx)
		}
	}
}

func (b *Bot) sweepReminders(ctx context.Context) {
	pending, err := b.events.PendingReminders(ctx, reminderWindow)
	if err != nil {
		b.log.Error("load pending reminders", "error", err)
		return
	}
	for _, p := range pending {
		ev := queue.ReminderEvent{
			EventID:   p.EventID,
			EventName: p.EventName,
			EventDate: p.EventDate.UTC().Format(time.RFC3339),
			GuildID:   p.GuildID,
			UserID:    p.UserID,
			Username:  p.Username,
		}
		if err := queue.PublishReminder(ctx, ev); err != nil {
			b.log.Error("publish reminder", "event", p.EventID, "user", p.UserID, "error", err)
			continue
		}
		b.log.Debug("reminder queued", "event", p.EventID, "user", p.UserID)
	}
}

// DeliverReminder is the queue consumer handler: it DMs the user about the
// upcoming event and marks the (event, user) pair as reminded.  A returned
// error rejects the delivery so a transient Discord failure does not mark
// the reminder sent.
func (b *Bot) DeliverReminder(ctx context.Context, ev queue.ReminderEvent) error {
	eventDate, err := time.Parse(time.RFC3339, ev.EventDate)
	if err != nil {
		return fmt.Errorf("parse event date %q: %w", ev.EventDate, err)
	}

	channel, err := b.session.UserChannelCreate(ev.UserID)
	if err != nil {
		return fmt.Errorf("open DM channel for %s: %w", ev.UserID, err)
	}

	content := fmt.Sprintf(
		"Hey %s,\nDon't forget about the event %q!\nIt is taking place at <t:%d:f> (this date & time is displayed in your local time).",
		ev.Username, ev.EventName, eventDate.Unix())
	if _, err := b.session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("send reminder DM to %s: %w", ev.UserID, err)
	}

	if err := b.events.MarkReminderSent(ctx, ev.EventID, ev.UserID); err != nil {
		// Delivered but not recorded; the next sweep will re-publish and the
		// user may get a duplicate DM. Prefer that over a silently lost flag.
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	b.log.Info("reminder delivered", "event", ev.EventID, "user", ev.UserID)
	return nil
}
