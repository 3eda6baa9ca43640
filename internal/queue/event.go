// Package queue defines message payloads exchanged over the message broker.
package queue

// ReminderEvent is published for each pending (event, user) pair found by the
// reminder sweep.  It carries enough for the consumer to deliver the DM
// without querying the primary database.
type ReminderEvent struct {
	EventID   uint64 `json:"event_id"`
	EventName string `json:"event_name"`
	EventDate string `json:"event_date"` // RFC 3339, UTC
	GuildID   string `json:"guild_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
}
