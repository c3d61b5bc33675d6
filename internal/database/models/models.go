// Package models contains the database model definitions for the
// settings store: the small set of facts the runtime needs primed from
// disk before the first project snapshot arrives (Art-Net broadcast
// address, last-applied endpoint config per universe). It does not
// persist projects, fixtures, scenes or effects.
package models

import (
	"time"
)

// Setting represents one key/value row in the settings store.
// Table: settings
type Setting struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Key       string    `gorm:"column:key;uniqueIndex"`
	Value     string    `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string { return "settings" }
