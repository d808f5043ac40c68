package model

import "time"

// Activity log entry types.
const (
	LogTypeWebhook   = "webhook"
	LogTypeBuyOrder  = "buy_order"
	LogTypeSellOrder = "sell_order"
	LogTypeError     = "error"
	LogTypeSystem    = "system"
)

// ActivityLog is an immutable audit record of something the relay did or received.
// Entries are never updated; the whole table can only be cleared.
type ActivityLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Type    string `gorm:"size:20;not null;index" json:"type"`
	Message string `gorm:"type:text;not null" json:"message"`

	// Free-form serialized context (JSON).
	Details string `gorm:"type:text" json:"details,omitempty"`

	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	IPAddress string    `gorm:"size:64" json:"ipAddress,omitempty"`

	// Serialized exchange response for order entries.
	OrderData string `gorm:"type:text" json:"orderData,omitempty"`
	OrderID   string `gorm:"size:255" json:"orderId,omitempty"`
	ErrorCode string `gorm:"size:64" json:"errorCode,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName keeps the table name stable across drivers.
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// IsValidLogType reports whether t is one of the LogType* constants.
func IsValidLogType(t string) bool {
	switch t {
	case LogTypeWebhook, LogTypeBuyOrder, LogTypeSellOrder, LogTypeError, LogTypeSystem:
		return true
	}
	return false
}
