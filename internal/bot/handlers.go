package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/accessbot/internal/database"
	"github.com/example/accessbot/internal/excel"
	"github.com/example/accessbot/internal/registration"
)

// handleMessage routes a private message through the registration
// dialog, the admin dialogs and the command handlers. Group messages
// are ignored, the bot talks to users in private only.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.Chat.IsPrivate() {
		return
	}

	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)

	isAdmin, err := b.users.IsAdmin(ctx, userID)
	if err != nil {
		b.log.Errorw("admin lookup failed", "user_id", userID, "error", err)
		b.reply(msg.Chat.ID, textInternalError)
		return
	}

	if text == textCancel {
		b.workflow.Cancel(userID)
		b.setAdminState(userID, "")
		b.replyPlain(msg.Chat.ID, textCancelled)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, isAdmin)
		return
	}

	if sess, ok := b.workflow.Session(userID); ok {
		b.handleSessionMessage(ctx, msg, sess)
		return
	}

	if isAdmin {
		if state := b.adminState(userID); state != "" {
			b.handleAdminInput(ctx, msg, state)
			return
		}
		if msg.Document != nil {
			b.handleDocument(ctx, msg)
			return
		}
	}

	active, err := b.isActive(ctx, userID)
	if err != nil {
		b.log.Errorw("activity lookup failed", "user_id", userID, "error", err)
		b.reply(msg.Chat.ID, textInternalError)
		return
	}
	if active {
		b.reply(msg.Chat.ID, textHelp)
		return
	}
	b.startRegistration(msg.Chat.ID, userID)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, isAdmin bool) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setMenu(chatID, isAdmin)
		active, err := b.isActive(ctx, userID)
		if err != nil {
			b.log.Errorw("activity lookup failed", "user_id", userID, "error", err)
			b.reply(chatID, textInternalError)
			return
		}
		if active {
			b.sendInviteLink(ctx, chatID)
			return
		}
		b.startRegistration(chatID, userID)

	case "help":
		help := textHelp
		if isAdmin {
			help += textHelpAdmin
		}
		b.reply(chatID, help)

	case "id":
		b.reply(chatID, fmt.Sprintf("Ваш ID: %d", userID))

	case "grouplink":
		active, err := b.isActive(ctx, userID)
		if err != nil {
			b.log.Errorw("activity lookup failed", "user_id", userID, "error", err)
			b.reply(chatID, textInternalError)
			return
		}
		if !active {
			b.startRegistration(chatID, userID)
			return
		}
		b.sendInviteLink(ctx, chatID)

	case "select_group":
		if !isAdmin {
			return
		}
		b.promptGroupChoice(ctx, chatID, userID)

	case "add_admin":
		if !isAdmin {
			return
		}
		b.setAdminState(userID, adminStateAwaitingAdminID)
		b.reply(chatID, textAskAdminID)

	case "delete_user":
		if !isAdmin {
			return
		}
		b.setAdminState(userID, adminStateAwaitingDeleteID)
		b.reply(chatID, textAskDeleteID)
	}
}

// handleSessionMessage advances the registration dialog one step.
func (b *Bot) handleSessionMessage(ctx context.Context, msg *tgbotapi.Message, sess registration.Session) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch sess.State {
	case registration.StateAwaitingAgreement:
		if msg.Contact != nil {
			b.submitContact(ctx, msg)
			return
		}
		switch text {
		case textAgree:
			b.workflow.AwaitContact(userID)
			out := tgbotapi.NewMessage(chatID, textSharePhone)
			out.ReplyMarkup = contactKeyboard()
			b.send(out)
		case textDecline:
			b.workflow.Decline(userID)
			b.replyPlain(chatID, textDeclined)
		default:
			out := tgbotapi.NewMessage(chatID, textAgreement)
			out.ReplyMarkup = agreementKeyboard()
			b.send(out)
		}

	case registration.StateAwaitingPhone:
		if msg.Contact != nil {
			b.submitContact(ctx, msg)
			return
		}
		out := tgbotapi.NewMessage(chatID, textSharePhone)
		out.ReplyMarkup = contactKeyboard()
		b.send(out)

	case registration.StateAwaitingConflict:
		outcome, err := b.workflow.ResolveConflict(ctx, userID, text)
		if err != nil {
			b.log.Errorw("conflict resolution failed", "user_id", userID, "error", err)
			b.replyPlain(chatID, textInternalError)
			return
		}
		switch outcome {
		case registration.OutcomeRegistered:
			b.sendInviteLink(ctx, chatID)
		case registration.OutcomeKeptPrevious:
			b.replyPlain(chatID, textKeptPrevious)
		case registration.OutcomeInvalidAnswer:
			b.reply(chatID, textAnswerYesNo)
		}
	}
}

// submitContact feeds a shared contact into the workflow. Only the
// user's own contact counts, a forwarded contact of somebody else does
// not prove number ownership.
func (b *Bot) submitContact(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.Contact.UserID != userID {
		b.reply(chatID, textSharePhone)
		return
	}

	outcome, err := b.workflow.SubmitPhone(ctx, userID, msg.Contact.PhoneNumber)
	if err != nil {
		b.log.Errorw("phone submission failed", "user_id", userID, "error", err)
		b.replyPlain(chatID, textInternalError)
		return
	}

	switch outcome {
	case registration.OutcomeRegistered:
		b.sendInviteLink(ctx, chatID)
	case registration.OutcomeNotWhitelisted:
		b.replyPlain(chatID, textNotWhitelisted)
	case registration.OutcomeConflict:
		b.replyPlain(chatID, textConflict)
	}
}

// handleAdminInput consumes the reply to an /add_admin or /delete_user
// prompt.
func (b *Bot) handleAdminInput(ctx context.Context, msg *tgbotapi.Message, state string) {
	chatID := msg.Chat.ID

	targetID, err := parseUserID(msg.Text)
	if err != nil {
		b.reply(chatID, textInvalidUserID)
		return
	}
	b.setAdminState(msg.From.ID, "")

	switch state {
	case adminStateAwaitingAdminID:
		if _, err := b.users.Create(ctx, targetID); err != nil {
			b.log.Errorw("user creation failed", "user_id", targetID, "error", err)
			b.reply(chatID, textInternalError)
			return
		}
		if err := b.users.GrantAdmin(ctx, targetID); err != nil {
			b.log.Errorw("admin grant failed", "user_id", targetID, "error", err)
			b.reply(chatID, textInternalError)
			return
		}
		b.reply(chatID, fmt.Sprintf(textAdminGranted, targetID))

	case adminStateAwaitingDeleteID:
		err := b.users.Delete(ctx, targetID)
		if errors.Is(err, database.ErrNotFound) {
			b.reply(chatID, textUserNotFound)
			return
		}
		if err != nil {
			b.log.Errorw("user deletion failed", "user_id", targetID, "error", err)
			b.reply(chatID, textInternalError)
			return
		}
		b.reply(chatID, fmt.Sprintf(textUserDeleted, targetID))
	}
}

// promptGroupChoice shows the inline menu of chats the bot sits in.
func (b *Bot) promptGroupChoice(ctx context.Context, chatID, userID int64) {
	groups, err := b.groups.List(ctx)
	if err != nil {
		b.log.Errorw("group listing failed", "error", err)
		b.reply(chatID, textInternalError)
		return
	}
	if len(groups) == 0 {
		b.reply(chatID, textNoGroups)
		return
	}

	choices := make([]groupChoice, 0, len(groups))
	for _, group := range groups {
		title := strconv.FormatInt(group.ID, 10)
		chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: group.ID},
		})
		if err == nil && chat.Title != "" {
			title = chat.Title
		}
		if group.IsTarget {
			title = "✅ " + title
		}
		choices = append(choices, groupChoice{group: group, title: title})
	}

	b.setAdminState(userID, adminStateAwaitingGroup)
	out := tgbotapi.NewMessage(chatID, textChooseGroup)
	out.ReplyMarkup = groupSelectKeyboard(choices)
	b.send(out)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Warnw("callback ack failed", "error", err)
	}
	if query.Message == nil {
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID

	if query.Data == callbackCancel {
		b.setAdminState(userID, "")
		b.send(tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, textCancelled))
		return
	}

	if b.adminState(userID) != adminStateAwaitingGroup {
		return
	}

	groupID, err := strconv.ParseInt(query.Data, 10, 64)
	if err != nil {
		b.log.Warnw("unexpected callback data", "data", query.Data)
		return
	}

	if err := b.groups.SetTarget(ctx, groupID); err != nil {
		b.log.Errorw("target change failed", "group_id", groupID, "error", err)
		b.send(tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, textInternalError))
		return
	}

	b.setAdminState(userID, "")
	b.send(tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, textTargetChanged))
}

// handleJoinRequest approves join requests from registered active
// users and rejects everybody else with a private explanation. Join
// requests stay pending on the Telegram side when declined silently,
// so unknown users are told why.
func (b *Bot) handleJoinRequest(ctx context.Context, req *tgbotapi.ChatJoinRequest) {
	err := b.gate.Admit(ctx, req.Chat.ID, req.From.ID)
	switch {
	case err == nil:
		approve := tgbotapi.ApproveChatJoinRequestConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: req.Chat.ID},
			UserID:     req.From.ID,
		}
		if _, err := b.api.Request(approve); err != nil {
			b.log.Errorw("join approval failed", "chat_id", req.Chat.ID, "user_id", req.From.ID, "error", err)
			return
		}
		b.log.Infow("join request approved", "chat_id", req.Chat.ID, "user_id", req.From.ID)

	case errors.Is(err, registration.ErrNotTarget):
		// Not our group, leave the request to its admins.

	case errors.Is(err, registration.ErrRestrictedAccess):
		b.log.Infow("join request rejected", "chat_id", req.Chat.ID, "user_id", req.From.ID)
		// Best effort, the user may have never started the bot.
		b.reply(req.From.ID, textJoinRejected)

	default:
		b.log.Errorw("join request check failed", "chat_id", req.Chat.ID, "user_id", req.From.ID, "error", err)
	}
}

// handleMyChatMember tracks the chats the bot belongs to.
func (b *Bot) handleMyChatMember(ctx context.Context, upd *tgbotapi.ChatMemberUpdated) {
	if upd.Chat.IsPrivate() {
		return
	}

	switch upd.NewChatMember.Status {
	case "member", "administrator":
		if err := b.groups.Add(ctx, upd.Chat.ID); err != nil {
			b.log.Errorw("group registration failed", "chat_id", upd.Chat.ID, "error", err)
			return
		}
		b.log.Infow("added to group", "chat_id", upd.Chat.ID, "title", upd.Chat.Title)
	case "left", "kicked":
		if err := b.groups.Remove(ctx, upd.Chat.ID); err != nil {
			b.log.Errorw("group removal failed", "chat_id", upd.Chat.ID, "error", err)
			return
		}
		b.log.Infow("removed from group", "chat_id", upd.Chat.ID, "title", upd.Chat.Title)
	}
}

// handleDocument imports an uploaded whitelist spreadsheet.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if !strings.HasSuffix(strings.ToLower(msg.Document.FileName), ".xlsx") {
		b.reply(chatID, textImportFailed)
		return
	}

	url, err := b.api.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		b.log.Errorw("file URL lookup failed", "file_id", msg.Document.FileID, "error", err)
		b.reply(chatID, textImportFailed)
		return
	}

	resp, err := http.Get(url)
	if err != nil {
		b.log.Errorw("file download failed", "error", err)
		b.reply(chatID, textImportFailed)
		return
	}
	defer resp.Body.Close()

	result, err := excel.ImportPhones(ctx, resp.Body, b.phones)
	if err != nil {
		b.log.Errorw("whitelist import failed", "error", err)
		b.reply(chatID, textImportFailed)
		return
	}

	for _, importErr := range result.Errors {
		b.log.Warnw("whitelist row skipped", "detail", importErr)
	}
	b.log.Infow("whitelist imported", "added", result.Added, "skipped", result.Skipped, "total", result.TotalCells)
	b.reply(chatID, fmt.Sprintf(textImportDone, result.Added))
}

// startRegistration opens the agreement dialog.
func (b *Bot) startRegistration(chatID, userID int64) {
	b.workflow.Begin(userID)
	out := tgbotapi.NewMessage(chatID, textAgreement)
	out.ReplyMarkup = agreementKeyboard()
	b.send(out)
}

// sendInviteLink delivers a fresh invite link for the managed group.
func (b *Bot) sendInviteLink(ctx context.Context, chatID int64) {
	link, err := b.targetInviteLink(ctx)
	if errors.Is(err, database.ErrNotFound) {
		b.replyPlain(chatID, textNoTargetGroup)
		return
	}
	if err != nil {
		b.log.Errorw("invite link creation failed", "error", err)
		b.replyPlain(chatID, textInternalError)
		return
	}
	b.replyPlain(chatID, fmt.Sprintf(textRegistered, link))
}

// isActive reports registration status, treating unknown users as
// inactive.
func (b *Bot) isActive(ctx context.Context, userID int64) (bool, error) {
	user, err := b.users.GetByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsActive, nil
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: user id must be a positive number", ErrInvalidInput)
	}
	return id, nil
}
