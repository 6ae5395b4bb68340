package models

import "time"

// CollectionRecord stores one persisted collection as a JSON document.
type CollectionRecord struct {
	Key       string    `gorm:"column:collection_key;type:text;primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CollectionRecord) TableName() string {
	return "collections"
}
