package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/agrotrack/livestock_tracker/internal/events"
	"github.com/agrotrack/livestock_tracker/internal/logging"
	"github.com/agrotrack/livestock_tracker/internal/models"
	"github.com/agrotrack/livestock_tracker/internal/repo"
	"github.com/agrotrack/livestock_tracker/internal/roles"
)

var ErrBadShipment = errors.New("invalid shipment record")

type ShipmentService struct {
	Repo     *repo.GormRepo
	ES       *elasticsearch.Client
	ESIndex  string
	Producer *events.Producer
}

type RecordShipmentInput struct {
	BatchCode    string
	OriginSite   string
	DestSite     string
	NetHeadCount int
	LoadingStart time.Time
	LoadingEnd   time.Time
}

func (s *ShipmentService) Record(ctx context.Context, actor *models.User, in RecordShipmentInput) (*models.Shipment, error) {
	l := logging.FromContext(ctx).With("svc", "shipment.record", "actor_id", actor.ID)

	if !roles.AtLeast(actor.Role, models.RoleSupervisor) {
		return nil, ErrForbidden
	}
	if in.BatchCode == "" || in.OriginSite == "" || in.DestSite == "" ||
		in.NetHeadCount <= 0 || !in.LoadingEnd.After(in.LoadingStart) {
		return nil, ErrBadShipment
	}

	shipment := &models.Shipment{
		BatchCode:    in.BatchCode,
		OriginSite:   in.OriginSite,
		DestSite:     in.DestSite,
		NetHeadCount: in.NetHeadCount,
		LoadingStart: in.LoadingStart,
		LoadingEnd:   in.LoadingEnd,
		RecordedAt:   time.Now().UTC(),
		RecordedBy:   actor.ID,
	}

	if err := s.Repo.CreateShipment(ctx, shipment); err != nil {
		l.Error("record_failed", "error", err)
		return nil, err
	}

	if err := s.index(ctx, shipment); err != nil {
		l.Error("es_index_failed", "shipment_id", shipment.ID, "error", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, fmt.Sprint(shipment.ID), map[string]any{
		"type":        "shipment_recorded",
		"shipment_id": shipment.ID,
		"batch_code":  shipment.BatchCode,
		"head_count":  shipment.NetHeadCount,
	}); err != nil {
		l.Error("event_publish_failed", "error", err)
	}

	l.Info("shipment_recorded", "shipment_id", shipment.ID, "batch_code", shipment.BatchCode)
	return shipment, nil
}

func (s *ShipmentService) List(ctx context.Context, f repo.ShipmentFilter) ([]models.Shipment, error) {
	return s.Repo.ListShipments(ctx, f)
}

func (s *ShipmentService) index(ctx context.Context, sh *models.Shipment) error {
	if s.ES == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(sh); err != nil {
		return err
	}

	res, err := s.ES.Index(
		s.ESIndex,
		&buf,
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(fmt.Sprint(sh.ID)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", res.Status())
	}
	return nil
}
