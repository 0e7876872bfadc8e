package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"eartalk/internal/models"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
	closed        bool
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishAudioCreated(t *testing.T) {
	ch := &fakeChannel{}
	sent := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := &Client{channel: ch, log: zerolog.Nop(), now: func() time.Time { return sent }}

	owner := uint(7)
	audio := &models.Audio{
		Identifier:        "0b7c1f9e-1111-4222-8333-944445555666",
		OwnerID:           &owner,
		Text:              "hello",
		ProcessedFilepath: "media/2024/01/02/x_processed.wav",
		CreateDate:        sent,
	}
	require.NoError(t, c.PublishAudioCreated(audio))

	assert.Equal(t, "", ch.exchange)
	assert.Equal(t, AudioCreatedQueue, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, sent, ch.msg.Timestamp)

	var ev AudioCreated
	require.NoError(t, json.Unmarshal(ch.msg.Body, &ev))
	assert.Equal(t, audio.Identifier, ev.Identifier)
	require.NotNil(t, ev.OwnerID)
	assert.Equal(t, owner, *ev.OwnerID)
}

func TestPublishAudioCreated_Errors(t *testing.T) {
	c := &Client{log: zerolog.Nop(), now: time.Now}
	assert.Error(t, c.PublishAudioCreated(&models.Audio{}))

	c.channel = &fakeChannel{err: errors.New("channel closed")}
	assert.ErrorContains(t, c.PublishAudioCreated(&models.Audio{}), "channel closed")
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	c := &Client{channel: ch}
	require.NoError(t, c.Close())
	assert.True(t, ch.closed)
}
