package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shiftclock/shiftclock-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAcker struct {
	acked    bool
	nacked   bool
	requeue  bool
	rejected bool
}

func (a *recordingAcker) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *recordingAcker) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *recordingAcker) Reject(tag uint64, requeue bool) error {
	a.rejected = true
	a.requeue = requeue
	return nil
}

func newTestConsumer() *Consumer {
	return &Consumer{
		queueName: "test-queue",
		handlers:  make(map[string]MessageHandler),
		logger:    logger.Nop(),
	}
}

func delivery(t *testing.T, acker amqp.Acknowledger, eventType string, redelivered bool) amqp.Delivery {
	t.Helper()
	event, err := NewEvent(eventType, "kiosk", "corr-42", map[string]string{"employee_id": "emp-1"})
	require.NoError(t, err)
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: acker, Body: body, Redelivered: redelivered}
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("acks on success and propagates correlation id", func(t *testing.T) {
		c := newTestConsumer()
		var gotCorrelation string
		c.RegisterHandler(EventKioskClockRecorded, func(ctx context.Context, event *Event) error {
			gotCorrelation = getCorrelationID(ctx)
			return nil
		})

		acker := &recordingAcker{}
		c.handleMessage(context.Background(), delivery(t, acker, EventKioskClockRecorded, false))

		assert.True(t, acker.acked)
		assert.Equal(t, "corr-42", gotCorrelation)
	})

	t.Run("acks events without a handler", func(t *testing.T) {
		c := newTestConsumer()
		acker := &recordingAcker{}
		c.handleMessage(context.Background(), delivery(t, acker, "kiosk.heartbeat", false))

		assert.True(t, acker.acked)
	})

	t.Run("rejects malformed body without requeue", func(t *testing.T) {
		c := newTestConsumer()
		acker := &recordingAcker{}
		c.handleMessage(context.Background(), amqp.Delivery{Acknowledger: acker, Body: []byte("{not json")})

		assert.True(t, acker.rejected)
		assert.False(t, acker.requeue)
	})

	t.Run("requeues first failure", func(t *testing.T) {
		c := newTestConsumer()
		c.RegisterHandler(EventKioskClockRecorded, func(ctx context.Context, event *Event) error {
			return errors.New("database unavailable")
		})

		acker := &recordingAcker{}
		c.handleMessage(context.Background(), delivery(t, acker, EventKioskClockRecorded, false))

		assert.True(t, acker.nacked)
		assert.True(t, acker.requeue)
	})

	t.Run("dead-letters redelivered failure", func(t *testing.T) {
		c := newTestConsumer()
		c.RegisterHandler(EventKioskClockRecorded, func(ctx context.Context, event *Event) error {
			return errors.New("database unavailable")
		})

		acker := &recordingAcker{}
		c.handleMessage(context.Background(), delivery(t, acker, EventKioskClockRecorded, true))

		assert.True(t, acker.rejected)
		assert.False(t, acker.requeue)
	})

	t.Run("dead-letters permanent failure immediately", func(t *testing.T) {
		c := newTestConsumer()
		c.RegisterHandler(EventKioskClockRecorded, func(ctx context.Context, event *Event) error {
			return Permanent(errors.New("unknown event type"))
		})

		acker := &recordingAcker{}
		c.handleMessage(context.Background(), delivery(t, acker, EventKioskClockRecorded, false))

		assert.True(t, acker.rejected)
		assert.False(t, acker.requeue)
	})
}

func TestPermanent(t *testing.T) {
	base := errors.New("bad payload")
	wrapped := Permanent(base)

	assert.True(t, IsPermanent(wrapped))
	assert.ErrorIs(t, wrapped, base)
	assert.False(t, IsPermanent(base))
	assert.Nil(t, Permanent(nil))
}
