package model

import "time"

// RSVP responses recorded from the event message buttons.
const (
	RSVPYes = "yes"
	RSVPNo  = "no"
)

// Event is a scheduled guild event or mission.  The (guild, name) pair is
// unique; re-creating an event with the same name overwrites the old one.
// EventDate is stored in UTC.  MessageID points at the posted announcement
// message so its buttons can be resolved back to the row.
type Event struct {
	ID           uint64     `json:"id"`
	GuildID      string     `json:"guild_id"`
	GameName     string     `json:"game_name"`
	Name         string     `json:"name"`
	ChannelID    string     `json:"channel_id"`
	Summary      string     `json:"summary"`
	Description  string     `json:"description"`
	EventDate    time.Time  `json:"event_date"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	ImageURLs    []string   `json:"image_urls,omitempty"`
	MessageID    string     `json:"message_id,omitempty"`
	Debrief      string     `json:"debrief,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RSVP is a user's yes/no response to an event.  ReminderSent flips once the
// reminder sweep has delivered a DM for the pair, so each (event, user) gets
// at most one reminder.
type RSVP struct {
	EventID      uint64 `json:"event_id"`
	UserID       string `json:"user_id"`
	Response     string `json:"response"`
	ReminderSent bool   `json:"reminder_sent"`
}

// EventAttendee is a yes-RSVP member joined with their role flags, used by
// the party builder.
type EventAttendee struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"name"`
	Roles    []string `json:"roles"`
}
