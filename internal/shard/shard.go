package shard

import (
	"context"
	"encoding/binary"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"hash/crc32"
	"sort"
	"strconv"
	"tasktracker/internal/config"
	"tasktracker/internal/logger"
	"tasktracker/migrations/telegram"
	"tasktracker/migrations/users"
	"time"
)

type ShardManager struct {
	UserShards     map[int]*pgxpool.Pool
	TelegramShards map[int]*pgxpool.Pool
}

// NewShardManager создает новый менеджер шардов и инициализирует подключения
func NewShardManager(ctx context.Context, conf *config.Config) (*ShardManager, error) {
	sm := &ShardManager{
		UserShards:     make(map[int]*pgxpool.Pool),
		TelegramShards: make(map[int]*pgxpool.Pool),
	}

	// Инициализация user-shards
	for shardID, connStr := range conf.DB.UserShards {
		conn, err := connect(ctx, conf, connStr)
		if err != nil {
			sm.Close()
			return nil, fmt.Errorf("failed to connect to user shard %d: %w", shardID, err)
		}
		sm.UserShards[shardID] = conn

		err = RunMigrations(ctx, conn, users.Migration)
		if err != nil {
			sm.Close()
			return nil, fmt.Errorf("failed to run migrations on user shard %d: %w", shardID, err)
		}
	}

	// Инициализация telegram-shards
	for shardID, connStr := range conf.DB.TelegramShards {
		conn, err := connect(ctx, conf, connStr)
		if err != nil {
			sm.Close()
			return nil, fmt.Errorf("failed to connect to telegram shard %d: %w", shardID, err)
		}
		sm.TelegramShards[shardID] = conn

		err = RunMigrations(ctx, conn, telegram.Migration)
		if err != nil {
			sm.Close()
			return nil, fmt.Errorf("failed to run migrations on telegram shard %d: %w", shardID, err)
		}
	}

	return sm, nil
}

func connect(ctx context.Context, conf *config.Config, connStr string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	poolConfig.MaxConns = conf.DB.MaxConns
	poolConfig.MinConns = conf.DB.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	conn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Проверяем доступность базы данных
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return conn, nil
}

// Close закрывает все соединения с шардированными базами данных
func (sm *ShardManager) Close() {
	for _, conn := range sm.UserShards {
		conn.Close()
	}
	for _, conn := range sm.TelegramShards {
		conn.Close()
	}
}

// ShardForUser возвращает номер user-шарда, где живут пользователь, его категории и задачи
func (sm *ShardManager) ShardForUser(userID int64) int {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(userID))
	return pick(crc32.ChecksumIEEE(buf[:]), sm.UserShards)
}

// ShardForTelegram возвращает номер шарда с индексом telegram_id -> user_id
func (sm *ShardManager) ShardForTelegram(telegramID int64) int {
	hash := crc32.ChecksumIEEE([]byte(strconv.FormatInt(telegramID, 10)))
	return pick(hash, sm.TelegramShards)
}

// pick maps a hash onto the n-th smallest shard number, so configs with
// gaps in numbering still spread evenly.
func pick(hash uint32, shards map[int]*pgxpool.Pool) int {
	ids := ShardIDs(shards)
	if len(ids) == 0 {
		return -1
	}
	return ids[int(hash%uint32(len(ids)))]
}

func ShardIDs(shards map[int]*pgxpool.Pool) []int {
	ids := make([]int, 0, len(shards))
	for id := range shards {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (sm *ShardManager) UserDB(userID int64) (*pgxpool.Pool, error) {
	shardID := sm.ShardForUser(userID)
	db, ok := sm.UserShards[shardID]
	if !ok {
		return nil, fmt.Errorf("user shard %d not found for id %d", shardID, userID)
	}
	return db, nil
}

func (sm *ShardManager) TelegramDB(telegramID int64) (*pgxpool.Pool, error) {
	shardID := sm.ShardForTelegram(telegramID)
	db, ok := sm.TelegramShards[shardID]
	if !ok {
		return nil, fmt.Errorf("telegram shard %d not found for telegram id %d", shardID, telegramID)
	}
	return db, nil
}

// RunMigrations выполняет SQL-скрипты миграции
func RunMigrations(ctx context.Context, conn *pgxpool.Pool, migration string) error {
	_, err := conn.Exec(ctx, migration)
	if err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	logger.L().Infof("migration successfully executed")
	return nil
}

// ClearDatabases очищает все данные в шардах
func (sm *ShardManager) ClearDatabases(ctx context.Context) error {
	for _, conn := range sm.UserShards {
		if _, err := conn.Exec(ctx, "TRUNCATE tasks, categories, users"); err != nil {
			return err
		}
	}

	for _, conn := range sm.TelegramShards {
		if _, err := conn.Exec(ctx, "DELETE FROM telegram_accounts"); err != nil {
			return err
		}
	}

	return nil
}
