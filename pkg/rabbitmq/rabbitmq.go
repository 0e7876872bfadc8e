package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"eartalk/internal/models"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
)

// AudioCreatedQueue receives one message per persisted audio record.
const AudioCreatedQueue = "audio_created"

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel channel
	log     zerolog.Logger
	now     func() time.Time
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// AudioCreated is the event body published after an audio record is committed.
type AudioCreated struct {
	Identifier        string    `json:"identifier"`
	OwnerID           *uint     `json:"owner_id"`
	Text              string    `json:"text"`
	ProcessedFilepath string    `json:"processed_filepath"`
	CreateDate        time.Time `json:"create_date"`
}

// NewClient connects to RabbitMQ, opens a channel and declares the audio queue.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		AudioCreatedQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", AudioCreatedQueue, err)
	}

	log.Info().Str("queue", AudioCreatedQueue).Msg("RabbitMQ client connected")

	return &Client{conn: conn, channel: ch, log: log, now: time.Now}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishAudioCreated publishes a persistent JSON event for audio on the default exchange.
func (c *Client) PublishAudioCreated(audio *models.Audio) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(AudioCreated{
		Identifier:        audio.Identifier,
		OwnerID:           audio.OwnerID,
		Text:              audio.Text,
		ProcessedFilepath: audio.ProcessedFilepath,
		CreateDate:        audio.CreateDate,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal audio event: %w", err)
	}

	err = c.channel.Publish(
		"",                // exchange: default
		AudioCreatedQueue, // routing key: the queue name
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    c.now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug().Str("identifier", audio.Identifier).Msg("audio event published")
	return nil
}
