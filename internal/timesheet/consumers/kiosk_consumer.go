package consumers

import (
	"context"
	"fmt"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/service"
	"github.com/shiftclock/shiftclock-backend/pkg/errors"
	"github.com/shiftclock/shiftclock-backend/pkg/logger"
	"github.com/shiftclock/shiftclock-backend/pkg/messaging"
	"github.com/shiftclock/shiftclock-backend/pkg/tenant"
)

const (
	KioskQueue      = "timesheet-service.kiosk-events"
	kioskRoutingKey = "kiosk.clock.#"
)

// EventRecorder stores a punch
type EventRecorder interface {
	RecordEvent(ctx context.Context, in service.RecordEventInput) (*service.RecordedEvent, error)
}

// KioskEventConsumer records punches published by kiosk terminals
type KioskEventConsumer struct {
	consumer *messaging.Consumer
	recorder EventRecorder
	logger   *logger.Logger
}

// NewKioskEventConsumer binds the kiosk queue and registers its handlers
func NewKioskEventConsumer(rmq *messaging.RabbitMQ, recorder EventRecorder, log *logger.Logger) (*KioskEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, KioskQueue, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeKioskEvents, kioskRoutingKey); err != nil {
		return nil, err
	}

	c := NewKioskHandler(recorder, log)
	c.consumer = consumer
	consumer.RegisterHandler(messaging.EventKioskClockRecorded, c.HandleClockRecorded)

	return c, nil
}

// NewKioskHandler returns a consumer without a queue, for driving the handler directly
func NewKioskHandler(recorder EventRecorder, log *logger.Logger) *KioskEventConsumer {
	return &KioskEventConsumer{
		recorder: recorder,
		logger:   log.WithComponent("kiosk-consumer"),
	}
}

// Start starts consuming messages
func (c *KioskEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// HandleClockRecorded records one kiosk punch under the tenant named in the message
func (c *KioskEventConsumer) HandleClockRecorded(ctx context.Context, event *messaging.Event) error {
	var data messaging.KioskClockRecordedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return messaging.Permanent(err)
	}

	if data.TenantID == "" {
		return messaging.Permanent(fmt.Errorf("kiosk event %s carries no tenant", event.ID))
	}
	if data.Timestamp.IsZero() {
		return messaging.Permanent(fmt.Errorf("kiosk event %s carries no timestamp", event.ID))
	}

	ctx = tenant.WithTenantContext(ctx, data.TenantID, data.TenantSlug, data.TenantSchema)

	log := c.logger.WithEmployeeID(data.EmployeeID)
	log.Info().
		Str("device_id", data.DeviceID).
		Str("type", data.Type).
		Str("tenant_id", data.TenantID).
		Msg("received kiosk punch")

	ts := data.Timestamp
	in := service.RecordEventInput{
		EmployeeID: data.EmployeeID,
		Type:       domain.EventType(data.Type),
		Timestamp:  &ts,
		Source:     domain.SourceKiosk,
	}
	if data.DeviceID != "" {
		deviceID := data.DeviceID
		in.DeviceID = &deviceID
	}

	_, err := c.recorder.RecordEvent(ctx, in)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errors.ErrConflict):
		// redelivery of a punch that is already stored
		log.Info().
			Str("device_id", data.DeviceID).
			Msg("kiosk punch already recorded, skipping")
		return nil
	case errors.Is(err, errors.ErrValidation), errors.Is(err, errors.ErrBadRequest):
		return messaging.Permanent(err)
	default:
		return err
	}
}
