package repository

import (
	"context"
	"database/sql"

	"github.com/szymonsamus/gripendor/internal/model"
)

// AttendanceRepo persists per-date attendance counters.  Uniqueness is
// enforced on (guild, user, date); re-recording the same member on the same
// date increments the counter instead of inserting.
type AttendanceRepo struct{ DB *sql.DB }

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{DB: db} }

// Record upserts one sighting of a member on the given date (YYYY-MM-DD).
func (r *AttendanceRepo) Record(ctx context.Context, guildID, userID, username, date string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO attendance (guild_id, user_id, username, date, count)
		VALUES (?,?,?,?,1)
		ON DUPLICATE KEY UPDATE count = count + 1, username = VALUES(username)`,
		guildID, userID, username, date)
	return err
}

// ListByGuild returns the guild's attendance rows, most recent dates first.
func (r *AttendanceRepo) ListByGuild(ctx context.Context, guildID string) ([]model.Attendance, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT guild_id, user_id, username, DATE_FORMAT(date, '%Y-%m-%d'), count, updated_at
		FROM attendance WHERE guild_id = ?
		ORDER BY date DESC, username`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Attendance
	for rows.Next() {
		var a model.Attendance
		if err := rows.Scan(&a.GuildID, &a.UserID, &a.Username, &a.Date, &a.Count, &a.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
