package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/szymonsamus/gripendor/internal/model"
)

// EventRepo persists events and their RSVP rows.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// Upsert inserts an event or overwrites the existing (guild, name) row, and
// returns the row id either way.  LAST_INSERT_ID(id) makes MySQL report the
// existing id on the update path.
func (r *EventRepo) Upsert(ctx context.Context, e model.Event) (uint64, error) {
	imageURLs, err := json.Marshal(e.ImageURLs)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO events (guild_id, game_name, name, channel_id, summary, description, event_date, thumbnail_url, image_urls)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			id = LAST_INSERT_ID(id),
			game_name = VALUES(game_name),
			channel_id = VALUES(channel_id),
			summary = VALUES(summary),
			description = VALUES(description),
			event_date = VALUES(event_date),
			thumbnail_url = VALUES(thumbnail_url),
			image_urls = VALUES(image_urls)`,
		e.GuildID, e.GameName, e.Name, e.ChannelID, e.Summary, e.Description,
		e.EventDate.UTC(), nullIfEmpty(e.ThumbnailURL), string(imageURLs))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// SetMessageID stores the id of the posted announcement message.
func (r *EventRepo) SetMessageID(ctx context.Context, eventID uint64, messageID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE events SET message_id = ? WHERE id = ?", messageID, eventID)
	return err
}

// SetDebrief stores the debrief text collected when an event is finished.
func (r *EventRepo) SetDebrief(ctx context.Context, eventID uint64, debrief string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE events SET debrief = ? WHERE id = ?", debrief, eventID)
	return err
}

// Delete removes an event; RSVP rows cascade.
func (r *EventRepo) Delete(ctx context.Context, eventID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM events WHERE id = ?", eventID)
	return err
}

// GetByID fetches a single event.
func (r *EventRepo) GetByID(ctx context.Context, eventID uint64) (model.Event, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT id, guild_id, game_name, name, channel_id, summary, description, event_date,
		       thumbnail_url, image_urls, message_id, debrief, created_at, updated_at
		FROM events WHERE id = ? LIMIT 1`, eventID))
}

// GetByName fetches a guild's event by its unique name.
func (r *EventRepo) GetByName(ctx context.Context, guildID, name string) (model.Event, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, `
		SELECT id, guild_id, game_name, name, channel_id, summary, description, event_date,
		       thumbnail_url, image_urls, message_id, debrief, created_at, updated_at
		FROM events WHERE guild_id = ? AND name = ? LIMIT 1`, guildID, name))
}

// ListByGuild returns the guild's events, soonest first.
func (r *EventRepo) ListByGuild(ctx context.Context, guildID string) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, guild_id, game_name, name, channel_id, summary, description, event_date,
		       thumbnail_url, image_urls, message_id, debrief, created_at, updated_at
		FROM events WHERE guild_id = ?
		ORDER BY event_date`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EventRepo) scanOne(row rowScanner) (model.Event, error) {
	var (
		e         model.Event
		thumbnail sql.NullString
		imageURLs sql.NullString
		messageID sql.NullString
		debrief   sql.NullString
	)
	err := row.Scan(&e.ID, &e.GuildID, &e.GameName, &e.Name, &e.ChannelID, &e.Summary,
		&e.Description, &e.EventDate, &thumbnail, &imageURLs, &messageID, &debrief,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.Event{}, err
	}
	e.ThumbnailURL = thumbnail.String
	e.MessageID = messageID.String
	e.Debrief = debrief.String
	if imageURLs.Valid && imageURLs.String != "" {
		if err := json.Unmarshal([]byte(imageURLs.String), &e.ImageURLs); err != nil {
			return model.Event{}, err
		}
	}
	return e, nil
}

// SaveRSVP upserts a user's yes/no response.  Changing the answer resets the
// reminder flag so a switched-to-yes user still gets a reminder.
func (r *EventRepo) SaveRSVP(ctx context.Context, eventID uint64, userID, response string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO event_rsvps (event_id, user_id, response, reminder_sent)
		VALUES (?,?,?,FALSE)
		ON DUPLICATE KEY UPDATE response = VALUES(response), reminder_sent = FALSE`,
		eventID, userID, response)
	return err
}

// PendingReminder is a yes-RSVP inside the reminder window whose DM has not
// been sent yet.
type PendingReminder struct {
	EventID   uint64    `json:"event_id"`
	EventName string    `json:"event_name"`
	EventDate time.Time `json:"event_date"`
	GuildID   string    `json:"guild_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
}

// PendingReminders returns every (event, user) pair with a yes response, an
// unsent reminder, and an event start inside the next window.
func (r *EventRepo) PendingReminders(ctx context.Context, window time.Duration) ([]PendingReminder, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT e.id, e.name, e.event_date, e.guild_id, m.user_id, m.username
		FROM events e
		JOIN event_rsvps er ON e.id = er.event_id
		JOIN guild_members m ON er.user_id = m.user_id AND e.guild_id = m.guild_id
		WHERE e.event_date BETWEEN UTC_TIMESTAMP() AND UTC_TIMESTAMP() + INTERVAL ? SECOND
		AND er.response = 'yes'
		AND er.reminder_sent = FALSE`,
		int64(window.Seconds()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingReminder
	for rows.Next() {
		var p PendingReminder
		if err := rows.Scan(&p.EventID, &p.EventName, &p.EventDate, &p.GuildID, &p.UserID, &p.Username); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkReminderSent flips the reminder flag for one (event, user) pair.
func (r *EventRepo) MarkReminderSent(ctx context.Context, eventID uint64, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE event_rsvps SET reminder_sent = TRUE WHERE event_id = ? AND user_id = ?",
		eventID, userID)
	return err
}

// ListAttendees returns the yes-RSVP members of an event joined with the
// roles they hold, for party generation.
func (r *EventRepo) ListAttendees(ctx context.Context, eventID uint64, guildID string) ([]model.EventAttendee, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.user_id, m.username, mr.role_name
		FROM event_rsvps er
		JOIN guild_members m ON er.user_id = m.user_id AND m.guild_id = ?
		LEFT JOIN guild_member_roles mr ON m.user_id = mr.user_id AND m.guild_id = mr.guild_id AND mr.has_role = TRUE
		WHERE er.event_id = ? AND er.response = 'yes'
		ORDER BY m.username`,
		guildID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*model.EventAttendee)
	var order []string
	for rows.Next() {
		var (
			userID   string
			username string
			roleName sql.NullString
		)
		if err := rows.Scan(&userID, &username, &roleName); err != nil {
			return nil, err
		}
		a, ok := byID[userID]
		if !ok {
			a = &model.EventAttendee{UserID: userID, Username: username}
			byID[userID] = a
			order = append(order, userID)
		}
		if roleName.Valid {
			a.Roles = append(a.Roles, roleName.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	attendees := make([]model.EventAttendee, 0, len(order))
	for _, id := range order {
		attendees = append(attendees, *byID[id])
	}
	return attendees, nil
}
