package repository

import (
	"context"
	"errors"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CursorRepository persists import progress per source key.
type CursorRepository interface {
	Get(ctx context.Context, sourceKey string) (int, error)
	Save(ctx context.Context, sourceKey string, offset int) error
	Clear(ctx context.Context, sourceKey string) error
}

type GormCursorRepository struct {
	db *gorm.DB
}

func NewGormCursorRepository(db *gorm.DB) *GormCursorRepository {
	return &GormCursorRepository{db: db}
}

// Get returns the stored offset, or 0 when the source has no cursor.
func (r *GormCursorRepository) Get(ctx context.Context, sourceKey string) (int, error) {
	var c models.ImportCursor
	err := r.db.WithContext(ctx).Where("source_key = ?", sourceKey).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.Offset, nil
}

func (r *GormCursorRepository) Save(ctx context.Context, sourceKey string, offset int) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"offset", "updated_at"}),
		}).
		Create(&models.ImportCursor{SourceKey: sourceKey, Offset: offset}).Error
}

func (r *GormCursorRepository) Clear(ctx context.Context, sourceKey string) error {
	return r.db.WithContext(ctx).Where("source_key = ?", sourceKey).Delete(&models.ImportCursor{}).Error
}
