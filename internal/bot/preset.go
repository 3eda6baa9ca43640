package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/szymonsamus/gripendor/internal/model"
)

// pendingPreset is the state carried between the /create-preset command and
// the role-count modal.  Modal custom ids cannot hold the full payload, so
// the half-built preset waits in memory keyed by guild and user.
type pendingPreset struct {
	Name         string
	GameRoleName string
	GameRoleID   string
	PartySize    int
	RoleNames    []string
	CreatedAt    time.Time
}

func pendingKey(guildID, userID string) string { return guildID + ":" + userID }

// pendingPresetTTL bounds how long a half-built preset waits for its modal.
// Discord never delivers a submission for a dismissed modal, so without the
// cutoff abandoned sessions would sit in the map until restart.
const pendingPresetTTL = 15 * time.Minute

// prunePendingPresets drops expired sessions.  Callers must hold b.mu.
func (b *Bot) prunePendingPresets(now time.Time) {
	for k, p := range b.pendingPresets {
		if now.Sub(p.CreatedAt) > pendingPresetTTL {
			delete(b.pendingPresets, k)
		}
	}
}

// handleCreatePreset validates the /create-preset options and opens a modal
// asking how many members of each selected role a single party requires.
func (b *Bot) handleCreatePreset(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, ok := b.requireAdminRole(ctx, s, i); !ok {
		return
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data)

	partySize := int(opts["party-size"].IntValue())
	presetName := opts["preset-name"].StringValue()
	gameRole := opts["game-selection"].RoleValue(s, i.GuildID)

	if partySize < 2 || partySize > 10 {
		respondWithMessage(s, i, "Party size must be between 2 and 10.")
		return
	}
	if len(presetName) > 40 {
		respondWithMessage(s, i, "Preset name must be 40 characters or less.")
		return
	}

	roles := collectRoles(s, i, opts, "preset_role", 9)
	if len(roles) == 0 {
		respondWithMessage(s, i, "You must select at least one role to create a preset.")
		return
	}

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}

	b.mu.Lock()
	b.prunePendingPresets(time.Now())
	b.pendingPresets[pendingKey(i.GuildID, i.Member.User.ID)] = pendingPreset{
		Name:         presetName,
		GameRoleName: gameRole.Name,
		GameRoleID:   gameRole.ID,
		PartySize:    partySize,
		RoleNames:    names,
		CreatedAt:    time.Now(),
	}
	b.mu.Unlock()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "preset_counts",
			Title:    "Role counts per party",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "counts",
							Label:       fmt.Sprintf("Counts for: %s", strings.Join(names, ", ")),
							Style:       discordgo.TextInputShort,
							Placeholder: "Comma separated, e.g. 1,2,3",
							Required:    true,
							MaxLength:   50,
						},
					},
				},
			},
		},
	})
	if err != nil {
		b.log.Error("open preset modal", "guild", i.GuildID, "error", err)
	}
}

// handlePresetSubmit parses the role counts, validates them against the
// party size and saves the preset.
func (b *Bot) handlePresetSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	key := pendingKey(i.GuildID, i.Member.User.ID)
	b.mu.Lock()
	pending, ok := b.pendingPresets[key]
	delete(b.pendingPresets, key)
	b.mu.Unlock()
	if ok && time.Since(pending.CreatedAt) > pendingPresetTTL {
		ok = false
	}
	if !ok {
		respondWithMessage(s, i, "This preset session has expired. Run `/create-preset` again.")
		return
	}

	data := i.ModalSubmitData()
	var raw string
	for _, row := range data.Components {
		if ar, ok := row.(*discordgo.ActionsRow); ok {
			for _, comp := range ar.Components {
				if ti, ok := comp.(*discordgo.TextInput); ok && ti.CustomID == "counts" {
					raw = ti.Value
				}
			}
		}
	}

	parts := strings.Split(raw, ",")
	if len(parts) != len(pending.RoleNames) {
		respondWithMessage(s, i, fmt.Sprintf("Expected %d counts (one per role), got %d.", len(pending.RoleNames), len(parts)))
		return
	}

	total := 0
	roles := make([]model.PresetRole, 0, len(parts))
	for idx, part := range parts {
		count, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || count < 0 {
			respondWithMessage(s, i, fmt.Sprintf("%q is not a valid count.", strings.TrimSpace(part)))
			return
		}
		total += count
		roles = append(roles, model.PresetRole{Role: pending.RoleNames[idx], Count: count})
	}
	if total > pending.PartySize {
		respondWithMessage(s, i, fmt.Sprintf("The role counts add up to %d but the party size is only %d.", total, pending.PartySize))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	preset := model.Preset{
		GuildID:      i.GuildID,
		Name:         pending.Name,
		GameRoleName: pending.GameRoleName,
		GameRoleID:   pending.GameRoleID,
		PartySize:    pending.PartySize,
		Roles:        roles,
	}
	if err := b.presets.Save(ctx, preset); err != nil {
		b.log.Error("save preset", "guild", i.GuildID, "preset", pending.Name, "error", err)
		respondWithMessage(s, i, "Something went wrong while saving the preset.")
		return
	}

	respondWithMessage(s, i, fmt.Sprintf("Preset %q saved for %s (party size %d).",
		pending.Name, pending.GameRoleName, pending.PartySize))
}
