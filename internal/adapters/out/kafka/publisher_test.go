package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"parking/internal/core/ports"
	"parking/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testEvent() ports.SessionEvent {
	fee := int64(1000)
	return ports.SessionEvent{
		Type:          ports.SessionExited,
		TransactionID: "tx-1",
		SessionID:     "0c4a7e1e-4a55-4b0c-9f7c-2f8f3f1b5c11",
		VehicleID:     "9a1d0f52-96c1-44f1-8d8e-6a44a3a0e0c2",
		LicensePlate:  "AB 123",
		SpotID:        "d2f6c0c8-1b7b-4c55-bb6a-63d0c29d4a01",
		TotalFeeCents: &fee,
		OccurredAt:    time.Date(2025, 6, 2, 10, 35, 0, 0, time.UTC),
	}
}

func TestSessionEventPublisher_Publish(t *testing.T) {
	writer := &MockWriter{}
	publisher := newSessionEventPublisher(writer, "parking.session-changed")
	event := testEvent()

	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		msg := msgs[0]
		var decoded ports.SessionEvent
		if err := json.Unmarshal(msg.Value, &decoded); err != nil {
			return false
		}
		return string(msg.Key) == event.SessionID &&
			decoded.Type == ports.SessionExited &&
			decoded.TotalFeeCents != nil && *decoded.TotalFeeCents == 1000 &&
			len(msg.Headers) == 1 && string(msg.Headers[0].Value) == "EXITED"
	})).Return(nil).Once()

	require.NoError(t, publisher.Publish(context.Background(), event))
	writer.AssertExpectations(t)
}

func TestSessionEventPublisher_WriteFailure(t *testing.T) {
	writer := &MockWriter{}
	publisher := newSessionEventPublisher(writer, "parking.session-changed")
	boom := errors.New("broker down")
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(boom).Once()

	err := publisher.Publish(context.Background(), testEvent())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "parking.session-changed")
}

func TestSessionEventPublisher_RequiresSessionID(t *testing.T) {
	writer := &MockWriter{}
	publisher := newSessionEventPublisher(writer, "topic")
	event := testEvent()
	event.SessionID = ""

	err := publisher.Publish(context.Background(), event)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestNewSessionEventPublisher_Validation(t *testing.T) {
	_, err := NewSessionEventPublisher("", "topic")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = NewSessionEventPublisher("localhost:9092", "")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	publisher, err := NewSessionEventPublisher("localhost:9092", "topic")
	require.NoError(t, err)
	assert.NoError(t, publisher.Close())
}

func TestSessionEventPublisher_Close(t *testing.T) {
	writer := &MockWriter{}
	writer.On("Close").Return(nil).Once()

	require.NoError(t, newSessionEventPublisher(writer, "topic").Close())
	writer.AssertExpectations(t)
}
