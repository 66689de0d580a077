package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/raksetu/bloodhub/internal/application/services"
	"github.com/raksetu/bloodhub/internal/domain/entities"
)

func TestCannedSupportChannel_RepliesAfterDelay(t *testing.T) {
	defer goleak.VerifyNone(t)

	channel := services.NewCannedSupportChannel(20*time.Millisecond, "We will call you.")
	start := time.Now()

	reply, err := channel.Reply(context.Background(), &entities.EmergencyRequest{ID: "r1"},
		entities.ChatMessage{Text: "Where is the blood bank?", Sender: entities.ChatSenderUser})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, "We will call you.", reply.Text)
	assert.Equal(t, entities.ChatSenderHospital, reply.Sender)
	assert.False(t, reply.Timestamp.IsZero())
}

func TestCannedSupportChannel_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	channel := services.NewCannedSupportChannel(time.Hour, "never")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := channel.Reply(ctx, &entities.EmergencyRequest{ID: "r1"}, entities.ChatMessage{Text: "hi"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
