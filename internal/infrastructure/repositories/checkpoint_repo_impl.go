package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	domainerrors "github.com/tekiplanet/safejet-processing-deposit/internal/domain/errors"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/models"
)

// CheckpointRepository stores each target's last-processed block height as
// a key/value row in the shared system settings table.
type CheckpointRepository struct {
	db *gorm.DB
}

func NewCheckpointRepository(db *gorm.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

func (r *CheckpointRepository) Get(ctx context.Context, target entities.Target) (uint64, bool, error) {
	db := GetDB(ctx, r.db)
	var m models.SystemSetting
	err := db.WithContext(ctx).Where("key = ?", target.CheckpointKey()).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	height, err := strconv.ParseUint(m.Value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("checkpoint %s: invalid stored value %q: %w", m.Key, m.Value, err)
	}
	return height, true, nil
}

func (r *CheckpointRepository) Set(ctx context.Context, target entities.Target, height uint64) error {
	db := GetDB(ctx, r.db)
	key := target.CheckpointKey()

	var existing models.SystemSetting
	err := db.WithContext(ctx).Where("key = ?", key).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.WithContext(ctx).Create(&models.SystemSetting{
			Key:       key,
			Value:     strconv.FormatUint(height, 10),
			UpdatedAt: time.Now(),
		}).Error
	case err != nil:
		return err
	}

	current, err := strconv.ParseUint(existing.Value, 10, 64)
	if err == nil && height < current {
		return domainerrors.ErrCheckpointMismatch
	}

	return db.WithContext(ctx).Model(&existing).
		Updates(map[string]any{
			"value":      strconv.FormatUint(height, 10),
			"updated_at": time.Now(),
		}).Error
}
