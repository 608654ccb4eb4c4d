package models

import "time"

// SystemSetting is a generic key/value row. Checkpoints are persisted here
// under entities.Target.CheckpointKey() rather than in a dedicated table,
// since nothing else in this domain needs a schema change to add a new
// setting key.
type SystemSetting struct {
	Key       string `gorm:"type:varchar(255);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (SystemSetting) TableName() string { return "system_settings" }
