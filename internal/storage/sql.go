package storage

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/db"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLKV stores one row per collection in the collections table.
type SQLKV struct {
	client *db.Client
	now    func() time.Time
}

func NewSQLKV(client *db.Client) *SQLKV {
	return &SQLKV{client: client, now: time.Now}
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, bool, error) {
	var rec models.CollectionRecord
	err := s.client.DB().WithContext(ctx).Where("collection_key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

func (s *SQLKV) Commit(ctx context.Context, sets map[string]string, dels []string) error {
	if len(sets) == 0 && len(dels) == 0 {
		return nil
	}
	now := s.now().UTC()
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		for key, value := range sets {
			rec := models.CollectionRecord{Key: key, Value: value, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&rec).Error
			if err != nil {
				return err
			}
		}
		if len(dels) > 0 {
			if err := tx.Where("collection_key IN ?", dels).Delete(&models.CollectionRecord{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
