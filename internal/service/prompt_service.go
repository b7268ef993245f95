package service

import (
	"context"
	"fmt"
	"sort"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"

	"go.uber.org/zap"
)

// PromptService управляет историей версий шаблонов промптов.
type PromptService interface {
	// CreatePrompt записывает версию 0. false, если у промпта уже есть версии.
	CreatePrompt(ctx context.Context, promptID int, template string) (bool, error)
	// ListVersions возвращает все версии по возрастанию номера.
	ListVersions(ctx context.Context, promptID int) ([]models.PromptVersion, error)
	// LatestVersion возвращает последнюю версию или ErrNotFound.
	LatestVersion(ctx context.Context, promptID int) (models.PromptVersion, error)
	// AppendVersion добавляет новую версию с номером max+1.
	AppendVersion(ctx context.Context, promptID int, template string) (models.PromptVersion, error)
}

type promptServiceImpl struct {
	repo      interfaces.PromptRepository
	publisher interfaces.PromptEventPublisher
	logger    *zap.Logger
}

// NewPromptService creates a new PromptService.
func NewPromptService(
	repo interfaces.PromptRepository,
	publisher interfaces.PromptEventPublisher,
	logger *zap.Logger,
) PromptService {
	if repo == nil {
		logger.Fatal("PromptRepository is nil for PromptService")
	}
	if publisher == nil {
		logger.Fatal("PromptEventPublisher is nil for PromptService")
	}
	return &promptServiceImpl{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("PromptService"),
	}
}

func (s *promptServiceImpl) CreatePrompt(ctx context.Context, promptID int, template string) (bool, error) {
	created, err := s.repo.Create(ctx, promptID, template)
	if err != nil {
		s.logger.Error("Failed to create prompt", zap.Int("promptID", promptID), zap.Error(err))
		return false, err
	}
	if created {
		s.publish(ctx, interfaces.PromptEvent{
			EventType: interfaces.PromptEventTypeCreated,
			PromptID:  promptID,
			Version:   models.VersionLabel(promptID, 0),
			Content:   template,
		})
	}
	return created, nil
}

func (s *promptServiceImpl) ListVersions(ctx context.Context, promptID int) ([]models.PromptVersion, error) {
	versions := make([]models.PromptVersion, 0)
	it := s.repo.ListVersions(ctx, promptID)
	for it.Next(ctx) {
		versions = append(versions, it.Version())
	}
	if err := it.Err(); err != nil {
		s.logger.Error("Failed to list prompt versions", zap.Int("promptID", promptID), zap.Error(err))
		return nil, fmt.Errorf("failed to list versions of prompt %d: %w", promptID, err)
	}
	// HSCAN не гарантирует порядок
	sort.Slice(versions, func(i, j int) bool { return versions[i].Number < versions[j].Number })

	s.logger.Debug("Prompt versions listed", zap.Int("promptID", promptID), zap.Int("count", len(versions)))
	return versions, nil
}

func (s *promptServiceImpl) LatestVersion(ctx context.Context, promptID int) (models.PromptVersion, error) {
	latest, found, err := s.repo.LatestVersion(ctx, promptID)
	if err != nil {
		s.logger.Error("Failed to get latest prompt version", zap.Int("promptID", promptID), zap.Error(err))
		return models.PromptVersion{}, err
	}
	if !found {
		return models.PromptVersion{}, fmt.Errorf("prompt %d: %w", promptID, models.ErrNotFound)
	}
	return latest, nil
}

func (s *promptServiceImpl) AppendVersion(ctx context.Context, promptID int, template string) (models.PromptVersion, error) {
	version, err := s.repo.AppendVersion(ctx, promptID, template)
	if err != nil {
		s.logger.Error("Failed to append prompt version", zap.Int("promptID", promptID), zap.Error(err))
		return models.PromptVersion{}, err
	}
	s.publish(ctx, interfaces.PromptEvent{
		EventType: interfaces.PromptEventTypeVersionAdded,
		PromptID:  promptID,
		Version:   version.Label,
		Content:   template,
	})
	return version, nil
}

// publish не роняет операцию: запись в хранилище уже состоялась.
func (s *promptServiceImpl) publish(ctx context.Context, event interfaces.PromptEvent) {
	if err := s.publisher.PublishPromptEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish prompt event",
			zap.String("eventType", string(event.EventType)),
			zap.Int("promptID", event.PromptID),
			zap.String("version", event.Version),
			zap.Error(err),
		)
	}
}
