package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"strconv"
	"strings"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/models"
	"tasktracker/internal/shard"
	"time"
)

const (
	LanguageRussian = "ru"
	LanguageEnglish = "en"
	DefaultTimezone = "UTC"
)

func NewUserService(manager *shard.ShardManager) *UserService {
	return &UserService{
		ShardManager: manager,
	}
}

type UserService struct {
	ShardManager *shard.ShardManager
}

// NormalizeLanguage сводит язык клиента Telegram к поддерживаемым: ru или en
func NormalizeLanguage(code string) string {
	switch strings.ToLower(code) {
	case "ru", "be", "uk", "kz":
		return LanguageRussian
	default:
		return LanguageEnglish
	}
}

// NewUserFromTelegram заполняет значения по умолчанию для нового пользователя
func NewUserFromTelegram(userID int64, auth models.TelegramAuth) models.User {
	username := auth.Username
	if username == "" {
		username = "tg_" + strconv.FormatInt(auth.TelegramID, 10)
	}
	return models.User{
		ID:         userID,
		TelegramID: auth.TelegramID,
		Username:   username,
		FirstName:  auth.FirstName,
		Language:   NormalizeLanguage(auth.LanguageCode),
		Timezone:   DefaultTimezone,
	}
}

const selectUser = `SELECT id, telegram_id, username, first_name, language, timezone, created_at, updated_at FROM users WHERE id = $1`

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	usersDB, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	user := models.User{}
	err = usersDB.QueryRow(ctx, selectUser, userID).Scan(&user.ID, &user.TelegramID, &user.Username,
		&user.FirstName, &user.Language, &user.Timezone, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// FindByTelegramID ищет пользователя через telegram-индекс
func (s *UserService) FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	telegramDB, err := s.ShardManager.TelegramDB(telegramID)
	if err != nil {
		return nil, err
	}

	var userID int64
	err = telegramDB.QueryRow(ctx, `SELECT user_id FROM telegram_accounts WHERE telegram_id = $1`, telegramID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("telegram account %d: %w", telegramID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find telegram account: %w", err)
	}

	return s.GetUserByID(ctx, userID)
}

func (s *UserService) CreateUserRecord(ctx context.Context, user models.User) error {
	usersDB, err := s.ShardManager.UserDB(user.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = usersDB.Exec(ctx, `INSERT INTO users (id, telegram_id, username, first_name, language, timezone, created_at, updated_at)
								VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.TelegramID, user.Username, user.FirstName, user.Language, user.Timezone, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (s *UserService) CreateTelegramRecord(ctx context.Context, userID, telegramID int64) error {
	telegramDB, err := s.ShardManager.TelegramDB(telegramID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = telegramDB.Exec(ctx, `INSERT INTO telegram_accounts (telegram_id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		telegramID, userID, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert telegram account: %w", err)
	}

	return nil
}

// DeleteTelegramRecordIfPresent удаляет запись индекса, только если она указывает на userID
func (s *UserService) DeleteTelegramRecordIfPresent(ctx context.Context, userID, telegramID int64) error {
	telegramDB, err := s.ShardManager.TelegramDB(telegramID)
	if err != nil {
		return err
	}
	_, err = telegramDB.Exec(ctx, `DELETE FROM telegram_accounts WHERE telegram_id = $1 AND user_id = $2`, telegramID, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to delete telegram record for telegram id %d: %w", telegramID, err)
	}

	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.User, error) {
	if update.Language != nil {
		lang := *update.Language
		if lang != LanguageRussian && lang != LanguageEnglish {
			return nil, fmt.Errorf("language %q: %w", lang, apperrors.ErrInvalidInput)
		}
	}
	if update.Timezone != nil {
		if _, err := time.LoadLocation(*update.Timezone); err != nil || *update.Timezone == "" {
			return nil, fmt.Errorf("timezone %q: %w", *update.Timezone, apperrors.ErrInvalidInput)
		}
	}

	usersDB, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	const query = `UPDATE users SET language = COALESCE($2, language), timezone = COALESCE($3, timezone), updated_at = $4 WHERE id = $1`
	rows, err := usersDB.Exec(ctx, query, userID, update.Language, update.Timezone, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return nil, fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
	}

	return s.GetUserByID(ctx, userID)
}
