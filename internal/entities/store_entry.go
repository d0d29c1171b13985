package entities

import "time"

// StoreEntry is one key of the key-value store: a whole serialized collection.
type StoreEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     []byte    `gorm:"type:blob" json:"value"`
	Writer    string    `gorm:"size:36;index" json:"writer"` // instance that performed the last write
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (StoreEntry) TableName() string {
	return "store_entries"
}
