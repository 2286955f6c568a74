package models

import "time"

type User struct {
	ID         int64     `json:"id,string"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	Language   string    `json:"language"`
	Timezone   string    `json:"timezone"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TelegramAuth is what the bot knows about a user when it first talks to us.
type TelegramAuth struct {
	TelegramID   int64  `json:"telegram_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LanguageCode string `json:"language_code"`
}

type ProfileUpdate struct {
	Language *string `json:"language"`
	Timezone *string `json:"timezone"`
}
