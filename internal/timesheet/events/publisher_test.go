package events_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shiftclock/shiftclock-backend/internal/timesheet/domain"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/events"
	"github.com/shiftclock/shiftclock-backend/internal/timesheet/service"
	"github.com/shiftclock/shiftclock-backend/pkg/logger"
	"github.com/shiftclock/shiftclock-backend/pkg/messaging"
	"github.com/shiftclock/shiftclock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ service.EventNotifier = (*events.TimesheetEventPublisher)(nil)

func sampleEvent() *domain.TimeEvent {
	return &domain.TimeEvent{
		ID:         "evt-1",
		EmployeeID: "emp-1",
		Type:       domain.EventBreakStart,
		Timestamp:  time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC),
		Date:       "2024-03-04",
		Source:     domain.SourceKiosk,
	}
}

func TestEventRecorded(t *testing.T) {
	mock := testutil.NewMockPublisher()
	pub := events.NewWithPublisher(mock, logger.Nop())
	ctx := testutil.TestTenantContext()

	pub.EventRecorded(ctx, sampleEvent(), domain.WorkdaySummary{
		Status:             domain.StatusOnBreak,
		TotalWorkedMinutes: 180,
	})

	mock.AssertEventPublished(t, messaging.EventTimeEventRecorded)
	published := mock.Events()
	require.Len(t, published, 1)

	data, ok := published[0].Payload.(messaging.TimeEventRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, "evt-1", data.EventID)
	assert.Equal(t, "break-start", data.Type)
	assert.Equal(t, "on-break", data.Status)
	assert.Equal(t, 180.0, data.TotalWorkedMinutes)
	assert.Equal(t, testutil.TestTenantID, data.TenantID)
}

func TestEventUpdated(t *testing.T) {
	mock := testutil.NewMockPublisher()
	pub := events.NewWithPublisher(mock, logger.Nop())

	event := sampleEvent()
	actor := "mgr-1"
	event.UpdatedBy = &actor
	pub.EventUpdated(testutil.TestTenantContext(), event, map[string]any{"notes": "forgot to punch"})

	published := mock.Events()
	require.Len(t, published, 1)
	assert.Equal(t, messaging.EventTimeEventUpdated, published[0].Type)

	data := published[0].Payload.(messaging.TimeEventUpdatedEvent)
	assert.Equal(t, "mgr-1", data.UpdatedBy)
	assert.Equal(t, "forgot to punch", data.Fields["notes"])
}

func TestEventDeleted_WithoutTenant(t *testing.T) {
	mock := testutil.NewMockPublisher()
	pub := events.NewWithPublisher(mock, logger.Nop())

	pub.EventDeleted(context.Background(), sampleEvent())

	published := mock.Events()
	require.Len(t, published, 1)
	data := published[0].Payload.(messaging.TimeEventDeletedEvent)
	assert.Empty(t, data.TenantID)
	assert.Equal(t, "2024-03-04", data.Date)
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	mock := testutil.NewMockPublisher()
	mock.Err = fmt.Errorf("channel closed")
	pub := events.NewWithPublisher(mock, logger.Nop())

	assert.NotPanics(t, func() {
		pub.EventRecorded(context.Background(), sampleEvent(), domain.WorkdaySummary{})
	})
	mock.AssertNoEventsPublished(t)
}
