package services

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"strings"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/id"
	"tasktracker/internal/logger"
	"tasktracker/internal/models"
	"tasktracker/internal/shard"
	"time"
)

const maxCategoryName = 100

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewCategoryService принимает источник ID; nil означает id.Fallback()
func NewCategoryService(manager *shard.ShardManager, ids id.Source) *CategoryService {
	return &CategoryService{
		ShardManager: manager,
		ids:          id.OrFallback(ids),
	}
}

type CategoryService struct {
	ShardManager *shard.ShardManager
	ids          id.Source
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxCategoryName {
		return "", fmt.Errorf("category name must be 1..%d characters: %w", maxCategoryName, apperrors.ErrInvalidInput)
	}
	return name, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, userID int64, name string) (*models.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	categoryID, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate category id: %w", err)
	}

	now := time.Now().UTC()
	category := &models.Category{ID: categoryID, UserID: userID, Name: name, CreatedAt: now, UpdatedAt: now}

	_, err = db.Exec(ctx, `INSERT INTO categories (id, user_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		category.ID, category.UserID, category.Name, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		if pgErr, ok := lo.ErrorsAs[*pgconn.PgError](err); ok {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, fmt.Errorf("category %q: %w", name, apperrors.ErrCategoryExists)
			case pgerrcode.ForeignKeyViolation:
				return nil, fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
			}
		}
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	logger.L().Infow("category created", "category_id", category.ID, "user_id", userID)
	return category, nil
}

// GetOrCreateCategory возвращает категорию пользователя по имени, создавая ее при отсутствии
func (s *CategoryService) GetOrCreateCategory(ctx context.Context, userID int64, name string) (*models.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	category, err := findCategoryByName(ctx, db, userID, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	category, err = s.CreateCategory(ctx, userID, name)
	if errors.Is(err, apperrors.ErrCategoryExists) {
		// проиграли гонку параллельному запросу
		return findCategoryByName(ctx, db, userID, name)
	}
	return category, err
}

func findCategoryByName(ctx context.Context, db querier, userID int64, name string) (*models.Category, error) {
	const query = `SELECT id, user_id, name, created_at, updated_at FROM categories WHERE user_id = $1 AND name = $2`
	c := models.Category{}
	err := db.QueryRow(ctx, query, userID, name).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", name, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func getCategory(ctx context.Context, db querier, userID, categoryID int64) (*models.Category, error) {
	const query = `SELECT id, user_id, name, created_at, updated_at FROM categories WHERE id = $1`
	c := models.Category{}
	err := db.QueryRow(ctx, query, categoryID).Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("category %d: %w", categoryID, apperrors.ErrForeignCategory)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if c.UserID != userID {
		return nil, fmt.Errorf("category %d: %w", categoryID, apperrors.ErrForeignCategory)
	}
	return &c, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `SELECT id, user_id, name, created_at, updated_at FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Category, error) {
		c := models.Category{}
		err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	db, err := s.ShardManager.UserDB(userID)
	if err != nil {
		return err
	}

	rows, err := db.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("category %d: %w", categoryID, apperrors.ErrNotFound)
	}
	return nil
}
