package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"authkit/internal/model"
)

type EventPublisher interface {
	PublishUserRegistered(user *model.User, verificationToken string) error
	PublishUserSignedIn(userID uuid.UUID, provider string) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

// UserRegisteredEvent feeds the notification worker; the verification token
// rides along so the worker can build the confirmation link.
type UserRegisteredEvent struct {
	EventType         string    `json:"event_type"`
	UserID            uuid.UUID `json:"user_id"`
	Email             string    `json:"email"`
	VerificationToken string    `json:"verification_token"`
	RegisteredAt      time.Time `json:"registered_at"`
}

type UserSignedInEvent struct {
	EventType  string    `json:"event_type"`
	UserID     uuid.UUID `json:"user_id"`
	Provider   string    `json:"provider"`
	SignedInAt time.Time `json:"signed_in_at"`
}

func (p *NatsPublisher) PublishUserRegistered(user *model.User, verificationToken string) error {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	event := UserRegisteredEvent{
		EventType:         "user.registered",
		UserID:            user.ID,
		Email:             email,
		VerificationToken: verificationToken,
		RegisteredAt:      time.Now(),
	}

	eventJSON, err := json.Marshal(event)

	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	subject := "user.registered"
	err = p.conn.Publish(subject, eventJSON)

	if err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	log.Printf("Published event to NATS on subject '%s'", subject)

	return nil
}

func (p *NatsPublisher) PublishUserSignedIn(userID uuid.UUID, provider string) error {
	event := UserSignedInEvent{
		EventType:  "user.signed_in",
		UserID:     userID,
		Provider:   provider,
		SignedInAt: time.Now(),
	}

	eventJSON, err := json.Marshal(event)

	if err != nil {
		return err
	}

	subject := "user.signed_in"
	err = p.conn.Publish(subject, eventJSON)

	if err != nil {
		log.Printf("Error publishing to NATS: %v", err)

		return err
	}

	return nil
}
