package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/davisgreg1/valet-time-keeping/internal/config"
	"github.com/davisgreg1/valet-time-keeping/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventValetCreated, n.handleValetCreated)
	n.dispatcher.Subscribe(events.EventValetStatusChanged, n.handleValetStatusChanged)
	n.dispatcher.Subscribe(events.EventValetPromoted, n.handleRoleChanged)
	n.dispatcher.Subscribe(events.EventValetDemoted, n.handleRoleChanged)
	n.dispatcher.Subscribe(events.EventSessionTerminated, n.handleSessionTerminated)
}

func (n *NotificationService) handleValetCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ValetCreated", zap.String("valet_id", event.UserID), zap.String("actor_id", event.ActorID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleValetStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ValetStatusChanged", zap.String("valet_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRoleChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ValetRoleChanged", zap.String("valet_id", event.UserID), zap.String("type", string(event.Type)))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionTerminated(ctx context.Context, event events.Event) error {
	n.logger.Info("SessionTerminated", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}
