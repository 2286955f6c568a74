package users

// Migration создает таблицы пользователей, категорий и задач на user-шарде.
// Первичные ключи выдает id.Generator, поэтому BIGINT без последовательностей.
const Migration = `
CREATE TABLE IF NOT EXISTS users (
	id          BIGINT PRIMARY KEY,
	telegram_id BIGINT NOT NULL UNIQUE,
	username    TEXT NOT NULL,
	first_name  TEXT NOT NULL DEFAULT '',
	language    TEXT NOT NULL DEFAULT 'en',
	timezone    TEXT NOT NULL DEFAULT 'UTC',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id         BIGINT PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	name       VARCHAR(100) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS tasks (
	id              BIGINT PRIMARY KEY,
	user_id         BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	category_id     BIGINT REFERENCES categories (id) ON DELETE SET NULL,
	title           VARCHAR(255) NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	deadline        TIMESTAMPTZ,
	is_completed    BOOLEAN NOT NULL DEFAULT FALSE,
	is_notified     BOOLEAN NOT NULL DEFAULT FALSE,
	is_pre_notified BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS tasks_user_created_idx ON tasks (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS tasks_open_deadline_idx ON tasks (deadline) WHERE NOT is_completed;
`
