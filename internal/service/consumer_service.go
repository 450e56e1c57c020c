package service

import (
	"context"
	"encoding/json"

	"aficionado-be/internal/dto"
	"aficionado-be/internal/pkg/logger"
	"aficionado-be/internal/repository/contract"
	"aficionado-be/pkg/store"
	"aficionado-be/pkg/workspace"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService reconciles cached workspace listings queued on the
// reconcile topic.
type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	repo         contract.SessionRepository
	guard        *SessionGuard
	synchronizer *workspace.Synchronizer
	logger       logger.ILogger
	processed    func(sessionID string)
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	repo contract.SessionRepository,
	guard *SessionGuard,
	synchronizer *workspace.Synchronizer,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		repo:         repo,
		guard:        guard,
		synchronizer: synchronizer,
		logger:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// Every message is acked: there is no retry policy, a failed reconcile is
// reported on the session and the user can refresh again.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.ReconcileWorkspaceMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("RECONCILE", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}
	if cs.processed != nil {
		defer cs.processed(payload.SessionId)
	}

	session, ok, err := cs.repo.Get(ctx, payload.SessionId)
	if err != nil {
		cs.logger.Error("RECONCILE", "Failed to load session", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		return
	}
	if !ok || session.Username != payload.Username {
		cs.logger.Debug("RECONCILE", "Session gone, skipping", map[string]interface{}{
			"session_id": payload.SessionId,
		})
		return
	}

	fresh := workspace.NewFileSet()
	listErr := cs.synchronizer.Reconcile(ctx, session.Username, fresh)

	err = cs.guard.Update(ctx, session, func(st *store.Session) error {
		if listErr != nil {
			recordError(st, listErr, "Could not refresh your workspace files")
			return nil
		}
		st.WorkspaceFiles = fresh
		clearStorageError(st)
		return nil
	})
	if err != nil {
		cs.logger.Error("RECONCILE", "Failed to save session", map[string]interface{}{
			"session_id": payload.SessionId,
			"error":      err.Error(),
		})
		return
	}

	cs.logger.Info("RECONCILE", "Workspace reconciled", map[string]interface{}{
		"session_id": payload.SessionId,
		"username":   payload.Username,
		"files":      session.Files().Len(),
	})
}
