package models

import "time"

// LineItem is a single product reference held in a basket. Repeated adds of the
// same product produce repeated entries.
type LineItem struct {
	ProductID uint `json:"product_id"`
}

// RemovedLineItem records a removal. Name is captured at removal time; rows written
// before the name was tracked decode with an empty name.
type RemovedLineItem struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
}

// Basket holds the current items and the removal history for exactly one owner,
// either a user or an anonymous session.
type Basket struct {
	ID           uint              `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       *uint             `gorm:"column:user_id;uniqueIndex:idx_baskets_user_id"`
	SessionID    *string           `gorm:"column:session_id;uniqueIndex:idx_baskets_session_id"`
	Items        []LineItem        `gorm:"column:items;type:jsonb;serializer:json"`
	RemovedItems []RemovedLineItem `gorm:"column:removed_items;type:jsonb;serializer:json"`
	Version      int64             `gorm:"column:version;not null;default:1"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime;index:idx_baskets_updated_at"`
}

// All lists every persisted model, in dependency order, for schema bootstrapping.
func All() []any {
	return []any{&User{}, &Product{}, &Basket{}}
}
