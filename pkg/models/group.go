package models

// TelegramGroup represents a chat the bot has been added to.
// At most one group is flagged as the current target.
type TelegramGroup struct {
	ID       int64 `json:"id" db:"id"` // Telegram chat ID
	IsTarget bool  `json:"is_target" db:"is_target"`
}
