package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/accessbot/internal/registration"
	"github.com/example/accessbot/pkg/models"
)

// ErrInvalidInput flags user-supplied values that cannot be parsed.
var ErrInvalidInput = errors.New("invalid input")

// userStore is the part of the user repository the bot needs.
type userStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, id int64) (*models.User, error)
	GrantAdmin(ctx context.Context, id int64) error
	IsAdmin(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// groupStore manages the chats the bot has been added to.
type groupStore interface {
	Add(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.TelegramGroup, error)
	Target(ctx context.Context) (*models.TelegramGroup, error)
	SetTarget(ctx context.Context, id int64) error
}

// phoneStore receives imported whitelist entries.
type phoneStore interface {
	Add(ctx context.Context, phone int64) error
}

// Admin conversation states, kept separately from registration
// sessions because an admin can hold both at once.
const (
	adminStateAwaitingAdminID  = "awaiting_admin_id"
	adminStateAwaitingDeleteID = "awaiting_delete_id"
	adminStateAwaitingGroup    = "awaiting_group_choice"
)

// Bot wires the Telegram transport to the registration workflow and
// the admin operations.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *Config
	log      *zap.SugaredLogger
	users    userStore
	phones   phoneStore
	groups   groupStore
	workflow *registration.Workflow
	gate     *registration.Gatekeeper

	// adminStates tracks which input an admin's next message answers.
	adminMu     sync.Mutex
	adminStates map[int64]string

	// userLocks serializes update handling per user so a fast double
	// tap cannot interleave two registration steps.
	locksMu   sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// New creates a bot instance over an authorized Telegram API client.
func New(cfg *Config, log *zap.SugaredLogger, users userStore, phones phoneStore, groups groupStore, workflow *registration.Workflow, gate *registration.Gatekeeper) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		log:         log,
		users:       users,
		phones:      phones,
		groups:      groups,
		workflow:    workflow,
		gate:        gate,
		adminStates: make(map[int64]string),
		userLocks:   make(map[int64]*sync.Mutex),
	}, nil
}

// Start runs the long-polling loop until ctx is cancelled. Each update
// is handled on its own goroutine, serialized per user.
func (b *Bot) Start(ctx context.Context) error {
	b.log.Infow("bot authorized", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query", "my_chat_member", "chat_join_request"}

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("panic while handling update", "panic", r, "update_id", update.UpdateID)
		}
	}()

	switch {
	case update.Message != nil && update.Message.From != nil:
		b.withUserLock(update.Message.From.ID, func() {
			b.handleMessage(ctx, update.Message)
		})
	case update.CallbackQuery != nil:
		b.withUserLock(update.CallbackQuery.From.ID, func() {
			b.handleCallback(ctx, update.CallbackQuery)
		})
	case update.ChatJoinRequest != nil:
		b.handleJoinRequest(ctx, update.ChatJoinRequest)
	case update.MyChatMember != nil:
		b.handleMyChatMember(ctx, update.MyChatMember)
	}
}

func (b *Bot) withUserLock(userID int64, fn func()) {
	b.locksMu.Lock()
	lock, ok := b.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		b.userLocks[userID] = lock
	}
	b.locksMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	fn()
}

func (b *Bot) adminState(userID int64) string {
	b.adminMu.Lock()
	defer b.adminMu.Unlock()
	return b.adminStates[userID]
}

func (b *Bot) setAdminState(userID int64, state string) {
	b.adminMu.Lock()
	defer b.adminMu.Unlock()
	if state == "" {
		delete(b.adminStates, userID)
		return
	}
	b.adminStates[userID] = state
}

// send delivers a message and logs delivery failures instead of
// propagating them; a blocked bot must not break the handler.
func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warnw("failed to send message", "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyPlain(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	b.send(msg)
}

// targetInviteLink creates a fresh join-request invite link for the
// managed group. The v5 client has no typed helper for this call, so
// the raw response is decoded here.
func (b *Bot) targetInviteLink(ctx context.Context) (string, error) {
	target, err := b.groups.Target(ctx)
	if err != nil {
		return "", err
	}

	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:         tgbotapi.ChatConfig{ChatID: target.ID},
		Name:               "access bot",
		CreatesJoinRequest: true,
	}
	resp, err := b.api.Request(cfg)
	if err != nil {
		return "", fmt.Errorf("create invite link: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("decode invite link: %w", err)
	}
	return link.InviteLink, nil
}

// setMenu installs the per-chat command list, extended for admins.
func (b *Bot) setMenu(chatID int64, isAdmin bool) {
	scope := tgbotapi.NewBotCommandScopeChat(chatID)
	cfg := tgbotapi.NewSetMyCommandsWithScope(scope, commandMenu(isAdmin)...)
	if _, err := b.api.Request(cfg); err != nil {
		b.log.Warnw("failed to set command menu", "chat_id", chatID, "error", err)
	}
}
