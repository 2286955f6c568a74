package telegram

// Migration создает индекс telegram_id -> user_id на telegram-шарде.
const Migration = `
CREATE TABLE IF NOT EXISTS telegram_accounts (
	telegram_id BIGINT PRIMARY KEY,
	user_id     BIGINT NOT NULL UNIQUE,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
`
