package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var messageTracer = otel.Tracer("service/messages")

// MessageService sends acknowledgments from finance officers to donors.
type MessageService struct {
	store  port.MessageStore
	logger *zap.Logger
}

func NewMessageService(store port.MessageStore, logger *zap.Logger) *MessageService {
	return &MessageService{store: store, logger: logger}
}

func (s *MessageService) Send(ctx context.Context, actor domain.Identity, userEmail, title, message string) (*domain.Message, error) {
	ctx, span := messageTracer.Start(ctx, "MessageService.Send")
	defer span.End()

	userEmail = strings.TrimSpace(userEmail)
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	switch {
	case userEmail == "" || !strings.Contains(userEmail, "@"):
		return nil, &domain.ErrValidation{Field: "user_email", Message: "a valid donor email is required"}
	case title == "":
		return nil, &domain.ErrValidation{Field: "title", Message: "is required"}
	case message == "":
		return nil, &domain.ErrValidation{Field: "message", Message: "is required"}
	}

	m, err := s.store.CreateMessage(ctx, &domain.Message{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		UserEmail: userEmail,
		MessageBy: actor.Email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	s.logger.Info("message sent", zap.String("to", userEmail), zap.String("by", actor.Email))
	return m, nil
}

// ListSent returns messages written by actor.
func (s *MessageService) ListSent(ctx context.Context, actor domain.Identity) ([]domain.Message, error) {
	ctx, span := messageTracer.Start(ctx, "MessageService.ListSent")
	defer span.End()

	rows, err := s.store.ListMessages(ctx, domain.MessageFilter{MessageBy: actor.Email})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return rows, nil
}
