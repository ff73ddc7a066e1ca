package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/accessbot/pkg/models"
)

// callback data values
const (
	callbackCancel = "cancel"
)

// agreementKeyboard offers consent (sharing the contact in one tap) or
// refusal.
func agreementKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(textAgree),
			tgbotapi.NewKeyboardButton(textDecline),
		),
	)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	return keyboard
}

// contactKeyboard asks for the contact alone, used when the user
// consented in words instead of pressing the button.
func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("Поделиться контактом"),
			tgbotapi.NewKeyboardButton(textCancel),
		),
	)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	return keyboard
}

// groupChoice is one selectable entry of the group-picker menu.
type groupChoice struct {
	group models.TelegramGroup
	title string
}

// groupSelectKeyboard builds the inline group-picker menu, one button
// per registered chat plus a cancel row.
func groupSelectKeyboard(choices []groupChoice) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, choice := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(choice.title, strconv.FormatInt(choice.group.ID, 10)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(textCancel, callbackCancel),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// commandMenu returns the command list shown to a user, extended for
// admins.
func commandMenu(isAdmin bool) []tgbotapi.BotCommand {
	commands := []tgbotapi.BotCommand{
		{Command: "help", Description: "Помощь"},
		{Command: "grouplink", Description: "Получить ссылку на группу"},
		{Command: "id", Description: "Показать ваш ID"},
	}
	if isAdmin {
		commands = append(commands,
			tgbotapi.BotCommand{Command: "select_group", Description: "Выбрать управляемую группу"},
			tgbotapi.BotCommand{Command: "add_admin", Description: "Назначить администратора"},
			tgbotapi.BotCommand{Command: "delete_user", Description: "Удалить пользователя"},
		)
	}
	return commands
}
