// Package bot hosts the Discord side of the application: slash commands,
// message-component buttons, modals, and the background loops that need a
// live session (membership snapshots for the reconciler, reminder delivery).
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/szymonsamus/gripendor/internal/config"
	"github.com/szymonsamus/gripendor/internal/model"
	"github.com/szymonsamus/gripendor/internal/ocr"
	"github.com/szymonsamus/gripendor/internal/queue"
	"github.com/szymonsamus/gripendor/internal/repository"
)

// Reconciler is the slice of the reconcile package the bot triggers after
// /setup so a fresh configuration is reflected immediately instead of on the
// next tick.
type Reconciler interface {
	ReconcileGuild(ctx context.Context, cfg model.Guild)
}

// Bot represents the Discord bot instance.
type Bot struct {
	config  config.Config
	session *discordgo.Session
	log     *slog.Logger

	guilds     *repository.GuildRepo
	roles      *repository.RoleRepo
	members    *repository.MemberRepo
	attendance *repository.AttendanceRepo
	events     *repository.EventRepo
	presets    *repository.PresetRepo

	pipeline   *ocr.Pipeline
	reconciler Reconciler

	commands []*discordgo.ApplicationCommand

	mu             sync.Mutex
	pendingPresets map[string]pendingPreset // keyed by guildID:userID
}

// New creates a new Bot instance.  The reconciler is attached later via
// SetReconciler because it consumes the bot as its snapshot source.
func New(cfg config.Config, log *slog.Logger,
	guilds *repository.GuildRepo, roles *repository.RoleRepo, members *repository.MemberRepo,
	attendance *repository.AttendanceRepo, events *repository.EventRepo, presets *repository.PresetRepo,
	pipeline *ocr.Pipeline) (*Bot, error) {

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	b := &Bot{
		config:         cfg,
		session:        session,
		log:            log,
		guilds:         guilds,
		roles:          roles,
		members:        members,
		attendance:     attendance,
		events:         events,
		presets:        presets,
		pipeline:       pipeline,
		pendingPresets: make(map[string]pendingPreset),
	}
	b.registerHandlers()
	return b, nil
}

// SetReconciler wires the membership reconciler used for the immediate
// post-setup pass.
func (b *Bot) SetReconciler(r Reconciler) { b.reconciler = r }

// Session exposes the underlying Discord session for snapshot fetches.
func (b *Bot) Session() *discordgo.Session { return b.session }

// Start opens the Discord connection, registers slash commands and launches
// the reminder sweep and the reminder queue consumer.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	b.log.Info("connected to Discord", "user", b.session.State.User.Username)

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	go b.runReminderSweep(ctx)
	go queue.StartReminderConsumer(ctx, b.DeliverReminder)
	return nil
}

// Stop gracefully shuts down the bot.  Guild-scoped command registrations
// are removed so iterating against a dev guild does not accumulate stale
// commands; global registrations are left in place.
func (b *Bot) Stop() error {
	if b.session == nil {
		return nil
	}
	if b.config.CommandGuild != "" {
		b.removeCommands()
	}
	return b.session.Close()
}

// registerHandlers sets up Discord event handlers.
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("bot is ready", "guilds", len(r.Guilds))
	})
}

// handleInteraction routes slash commands, buttons and modal submissions.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		b.log.Debug("received command", "command", data.Name, "guild", i.GuildID)
		switch data.Name {
		case "setup":
			b.handleSetup(s, i)
		case "add-roles":
			b.handleAddRoles(s, i)
		case "attendance":
			b.handleAttendance(s, i)
		case "create-event":
			b.handleCreateEvent(s, i)
		case "create-preset":
			b.handleCreatePreset(s, i)
		case "customise-dashboard":
			b.handleCustomise(s, i)
		case "party":
			b.handleParty(s, i)
		default:
			b.log.Warn("unknown command", "command", data.Name)
		}
	case discordgo.InteractionMessageComponent:
		id := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(id, "attend_"):
			b.handleRSVP(s, i, strings.TrimPrefix(id, "attend_"), model.RSVPYes)
		case strings.HasPrefix(id, "decline_"):
			b.handleRSVP(s, i, strings.TrimPrefix(id, "decline_"), model.RSVPNo)
		case strings.HasPrefix(id, "cancel_"):
			b.handleCancelEvent(s, i, strings.TrimPrefix(id, "cancel_"))
		case strings.HasPrefix(id, "finish_"):
			b.handleFinishEvent(s, i, strings.TrimPrefix(id, "finish_"))
		default:
			b.log.Warn("unknown component", "custom_id", id)
		}
	case discordgo.InteractionModalSubmit:
		id := i.ModalSubmitData().CustomID
		switch {
		case strings.HasPrefix(id, "debrief_"):
			b.handleDebriefSubmit(s, i, strings.TrimPrefix(id, "debrief_"))
		case id == "preset_counts":
			b.handlePresetSubmit(s, i)
		default:
			b.log.Warn("unknown modal", "custom_id", id)
		}
	}
}

// Helper functions

func respondWithMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
}

// optionMap flattens interaction options for lookup by name.
func optionMap(data discordgo.ApplicationCommandInteractionData) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		out[opt.Name] = opt
	}
	return out
}

// attachmentOption resolves an attachment option to its metadata, or nil when
// the option was not supplied.
func attachmentOption(data discordgo.ApplicationCommandInteractionData, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.MessageAttachment {
	opt, ok := opts[name]
	if !ok || data.Resolved == nil {
		return nil
	}
	return data.Resolved.Attachments[opt.Value.(string)]
}

// memberHasRole reports whether the invoking member holds the given role id.
func memberHasRole(i *discordgo.InteractionCreate, roleID string) bool {
	if i.Member == nil || roleID == "" {
		return false
	}
	for _, r := range i.Member.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// requireAdminRole loads the guild config and checks the invoker holds the
// configured admin role.  It replies on failure and reports whether the
// caller may proceed.
func (b *Bot) requireAdminRole(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (model.Guild, bool) {
	cfg, err := b.guilds.Get(ctx, i.GuildID)
	if err != nil {
		respondWithMessage(s, i, "This server has not been set up yet. Run `/setup` first.")
		return model.Guild{}, false
	}
	if !memberHasRole(i, cfg.AdminRoleID) {
		respondWithMessage(s, i, "You do not have permission to perform this action.")
		return model.Guild{}, false
	}
	return cfg, true
}
