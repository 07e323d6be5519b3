package events

import (
	"context"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
	"github.com/shiftclock/shiftclock-backend/pkg/logger"
	"github.com/shiftclock/shiftclock-backend/pkg/messaging"
	"github.com/shiftclock/shiftclock-backend/pkg/tenant"
)

// Publisher sends an event onto the bus
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// TimesheetEventPublisher publishes time event changes
type TimesheetEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewTimesheetEventPublisher declares the timesheet exchange and returns a publisher for it
func NewTimesheetEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*TimesheetEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeTimesheetEvents, "timesheet-service", log)
	if err != nil {
		return nil, err
	}
	return NewWithPublisher(publisher, log), nil
}

// NewWithPublisher wraps an existing publisher
func NewWithPublisher(publisher Publisher, log *logger.Logger) *TimesheetEventPublisher {
	return &TimesheetEventPublisher{
		publisher: publisher,
		logger:    log.WithComponent("timesheet-events"),
	}
}

// EventRecorded publishes a recorded punch with the workday it produced
func (p *TimesheetEventPublisher) EventRecorded(ctx context.Context, event *domain.TimeEvent, workday domain.WorkdaySummary) {
	data := messaging.TimeEventRecordedEvent{
		EventID:            event.ID,
		EmployeeID:         event.EmployeeID,
		Type:               string(event.Type),
		Timestamp:          event.Timestamp,
		Date:               event.Date,
		Source:             event.Source,
		Status:             string(workday.Status),
		TotalWorkedMinutes: workday.TotalWorkedMinutes,
		TotalBreakMinutes:  workday.TotalBreakMinutes,
		TenantID:           tenantID(ctx),
	}

	if err := p.publisher.Publish(ctx, messaging.EventTimeEventRecorded, data); err != nil {
		p.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to publish time event recorded event")
	}
}

// EventUpdated publishes a manager correction
func (p *TimesheetEventPublisher) EventUpdated(ctx context.Context, event *domain.TimeEvent, fields map[string]any) {
	data := messaging.TimeEventUpdatedEvent{
		EventID:    event.ID,
		EmployeeID: event.EmployeeID,
		Date:       event.Date,
		Fields:     fields,
		TenantID:   tenantID(ctx),
	}
	if event.UpdatedBy != nil {
		data.UpdatedBy = *event.UpdatedBy
	}

	if err := p.publisher.Publish(ctx, messaging.EventTimeEventUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to publish time event updated event")
	}
}

// EventDeleted publishes a soft delete
func (p *TimesheetEventPublisher) EventDeleted(ctx context.Context, event *domain.TimeEvent) {
	data := messaging.TimeEventDeletedEvent{
		EventID:    event.ID,
		EmployeeID: event.EmployeeID,
		Date:       event.Date,
		TenantID:   tenantID(ctx),
	}

	if err := p.publisher.Publish(ctx, messaging.EventTimeEventDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to publish time event deleted event")
	}
}

func tenantID(ctx context.Context) string {
	id, _ := tenant.TenantID(ctx)
	return id
}
