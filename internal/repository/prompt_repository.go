package repository

import (
	"context"
	"fmt"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"

	"go.uber.org/zap"
)

// Compile-time check to ensure hashPromptRepository implements PromptRepository
var _ interfaces.PromptRepository = (*hashPromptRepository)(nil)

// maxAppendAttempts ограничивает CAS-цикл AppendVersion при конкурентной записи.
const maxAppendAttempts = 16

// hashPromptRepository хранит версии промпта в одном хеше:
// ключ - str(prompt_id), поля - "<prompt_id>v<n>", значения - текст шаблона.
type hashPromptRepository struct {
	store  interfaces.HashStore
	logger *zap.Logger
}

// NewPromptRepository creates a PromptRepository on top of a HashStore.
func NewPromptRepository(store interfaces.HashStore, logger *zap.Logger) interfaces.PromptRepository {
	return &hashPromptRepository{
		store:  store,
		logger: logger.Named("PromptRepo"),
	}
}

// Create записывает версию 0, если у промпта ещё нет ни одной версии.
// Повторное создание ничего не меняет и не считается ошибкой: первая запись выигрывает.
func (r *hashPromptRepository) Create(ctx context.Context, promptID int, template string) (bool, error) {
	key := models.PromptKey(promptID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check prompt %d existence: %w", promptID, err)
	}
	if exists {
		r.logger.Info("Prompt already exists, creation skipped", zap.Int("promptID", promptID))
		return false, nil
	}

	label := models.VersionLabel(promptID, 0)
	written, err := r.store.HSetNX(ctx, key, label, template)
	if err != nil {
		return false, fmt.Errorf("failed to create prompt %d: %w", promptID, err)
	}
	if !written {
		// Параллельный Create успел раньше
		r.logger.Info("Prompt version 0 written concurrently, creation skipped", zap.Int("promptID", promptID))
		return false, nil
	}
	r.logger.Info("Prompt created", zap.Int("promptID", promptID), zap.String("version", label))
	return true, nil
}

func (r *hashPromptRepository) ListVersions(ctx context.Context, promptID int) interfaces.VersionIterator {
	return &versionIterator{
		promptID: promptID,
		it:       r.store.HScan(ctx, models.PromptKey(promptID)),
	}
}

// AppendVersion пишет шаблон под номером max+1 (или 0, если версий нет).
// Запись идёт через HSETNX: если метку уже занял конкурент, максимум
// пересчитывается и попытка повторяется. Чужие версии никогда не перезаписываются.
func (r *hashPromptRepository) AppendVersion(ctx context.Context, promptID int, template string) (models.PromptVersion, error) {
	key := models.PromptKey(promptID)
	log := r.logger.With(zap.Int("promptID", promptID))

	for attempt := 1; attempt <= maxAppendAttempts; attempt++ {
		latest, found, err := r.LatestVersion(ctx, promptID)
		if err != nil {
			return models.PromptVersion{}, err
		}
		next := 0
		if found {
			next = latest.Number + 1
		}

		label := models.VersionLabel(promptID, next)
		written, err := r.store.HSetNX(ctx, key, label, template)
		if err != nil {
			return models.PromptVersion{}, fmt.Errorf("failed to append version %s: %w", label, err)
		}
		if written {
			log.Info("Prompt version appended", zap.String("version", label), zap.Int("attempt", attempt))
			return models.PromptVersion{PromptID: promptID, Label: label, Number: next, Template: template}, nil
		}
		log.Debug("Version label taken concurrently, rescanning", zap.String("version", label), zap.Int("attempt", attempt))
	}

	log.Warn("Gave up appending version after repeated conflicts", zap.Int("attempts", maxAppendAttempts))
	return models.PromptVersion{}, fmt.Errorf("%w: prompt %d after %d attempts", models.ErrVersionConflict, promptID, maxAppendAttempts)
}

func (r *hashPromptRepository) GetVersion(ctx context.Context, promptID, version int) (string, bool, error) {
	label := models.VersionLabel(promptID, version)
	text, found, err := r.store.HGet(ctx, models.PromptKey(promptID), label)
	if err != nil {
		return "", false, fmt.Errorf("failed to get prompt version %s: %w", label, err)
	}
	return text, found, nil
}

// LatestVersion проходит по всем меткам и возвращает версию с наибольшим номером.
func (r *hashPromptRepository) LatestVersion(ctx context.Context, promptID int) (models.PromptVersion, bool, error) {
	var latest models.PromptVersion
	found := false

	it := r.ListVersions(ctx, promptID)
	for it.Next(ctx) {
		v := it.Version()
		if !found || v.Number > latest.Number {
			latest = v
			found = true
		}
	}
	if err := it.Err(); err != nil {
		return models.PromptVersion{}, false, fmt.Errorf("failed to scan versions of prompt %d: %w", promptID, err)
	}
	return latest, found, nil
}

func (r *hashPromptRepository) Exists(ctx context.Context, promptID int) (bool, error) {
	exists, err := r.store.Exists(ctx, models.PromptKey(promptID))
	if err != nil {
		return false, fmt.Errorf("failed to check prompt %d existence: %w", promptID, err)
	}
	return exists, nil
}

// versionIterator превращает пары HSCAN в PromptVersion.
// На некорректной метке итерация останавливается с ошибкой.
type versionIterator struct {
	promptID int
	it       interfaces.HashIterator
	current  models.PromptVersion
	err      error
}

func (v *versionIterator) Next(ctx context.Context) bool {
	if v.err != nil || !v.it.Next(ctx) {
		return false
	}
	label := v.it.Field()
	n, err := models.ParseVersionNumber(label)
	if err != nil {
		v.err = err
		return false
	}
	v.current = models.PromptVersion{
		PromptID: v.promptID,
		Label:    label,
		Number:   n,
		Template: v.it.Value(),
	}
	return true
}

func (v *versionIterator) Version() models.PromptVersion { return v.current }

func (v *versionIterator) Err() error {
	if v.err != nil {
		return v.err
	}
	return v.it.Err()
}
