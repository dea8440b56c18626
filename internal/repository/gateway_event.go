package repository

import (
	"time"

	"gorm.io/gorm"

	"coursepay/internal/model"
)

// GatewayEventRepository deduplicates confirmation callbacks: the gateway may
// deliver the same event more than once and the success page can race the
// webhook for the same transaction.
type GatewayEventRepository interface {
	Exists(eventID string) (bool, error)
	MarkProcessed(eventID, eventType string) error
}

type gatewayEventRepoImpl struct {
	db *gorm.DB
}

func NewGatewayEventRepository(db *gorm.DB) GatewayEventRepository {
	return &gatewayEventRepoImpl{db: db}
}

func (r *gatewayEventRepoImpl) Exists(eventID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.GatewayEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error

	return count > 0, err
}

func (r *gatewayEventRepoImpl) MarkProcessed(eventID string, eventType string) error {
	return r.db.Create(&model.GatewayEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	}).Error
}
