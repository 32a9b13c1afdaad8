//go:build unit

package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"table-reservation/internal/usecase/shared"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	if !durable {
		return errors.New("exchange must be durable")
	}
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "reservations", slog.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"reservations:topic"}, ch.declared)

	event := shared.ReservationEvent{
		Type:          shared.EventReservationCreated,
		ReservationID: uuid.New(),
		Table:         2,
		StartTime:     time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2030, 6, 1, 20, 0, 0, 0, time.UTC),
		PartySize:     4,
		OccurredAt:    time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{"reservation.created"}, ch.keys)
	msg := ch.published[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)

	var decoded shared.ReservationEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event.ReservationID, decoded.ReservationID)
	assert.Equal(t, 2, decoded.Table)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	p, err := newPublisher(ch, "reservations", slog.Default())
	require.NoError(t, err)

	err = p.Publish(context.Background(), shared.ReservationEvent{Type: shared.EventReservationDeleted})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}
