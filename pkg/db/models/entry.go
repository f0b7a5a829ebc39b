package models

import (
	"time"
)

// Entry is a single key-value pair of the local store
type Entry struct {
	Key   string `gorm:"primaryKey;column:entry_key;type:text"`
	Value []byte `gorm:"type:blob;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "kv_entries"
}
