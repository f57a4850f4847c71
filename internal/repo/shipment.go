package repo

import (
	"context"
	"time"

	"github.com/agrotrack/livestock_tracker/internal/models"
)

type ShipmentFilter struct {
	From  *time.Time
	To    *time.Time
	Skip  int
	Limit int
}

func (r *GormRepo) CreateShipment(ctx context.Context, s *models.Shipment) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) ListShipments(ctx context.Context, f ShipmentFilter) ([]models.Shipment, error) {
	q := r.DB.WithContext(ctx).Model(&models.Shipment{})
	if f.From != nil {
		q = q.Where("recorded_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("recorded_at < ?", *f.To)
	}

	var shipments []models.Shipment
	if err := q.Order("recorded_at DESC").
		Offset(f.Skip).
		Limit(f.Limit).
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// ShipmentsSince returns every shipment recorded at or after since, oldest
// first. Used by the report aggregator, which needs the full window in memory.
func (r *GormRepo) ShipmentsSince(ctx context.Context, since time.Time) ([]models.Shipment, error) {
	var shipments []models.Shipment
	if err := r.DB.WithContext(ctx).
		Where("recorded_at >= ?", since).
		Order("recorded_at").
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

func (r *GormRepo) AllShipments(ctx context.Context) ([]models.Shipment, error) {
	var shipments []models.Shipment
	if err := r.DB.WithContext(ctx).Order("recorded_at").Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}
