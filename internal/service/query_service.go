package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/llm"
	"prompt-server/internal/models"
	"prompt-server/internal/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var cacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "prompt_server_cache_lookups_total",
		Help: "Total number of response cache lookups.",
	},
	[]string{"result"}, // hit, miss, corrupted
)

// errIncorrectTemplate - текст ошибки, когда запрошенной версии нет.
const errIncorrectTemplate = "incorrect prompt_template"

// Dispatcher отправляет готовый промпт провайдеру по тегу.
type Dispatcher interface {
	Complete(ctx context.Context, provider models.Provider, prompt string, temperature float32) llm.Result
}

// QueryService рендерит шаблон и опрашивает провайдера, с опциональным кешем ответа.
type QueryService interface {
	// CreateQuery возвращает Go-ошибку только при сбое хранилища.
	// Ошибки шаблона и провайдера попадают в поле Error ответа.
	CreateQuery(ctx context.Context, req models.QueryRequest) (*models.ResponseLLM, error)
}

type queryServiceImpl struct {
	repo        interfaces.PromptRepository
	cache       interfaces.ResponseCache
	dispatcher  Dispatcher
	maxVariants int
	logger      *zap.Logger
	now         func() time.Time
}

// NewQueryService creates a new QueryService. maxVariants <= 0 disables the upper bound.
func NewQueryService(
	repo interfaces.PromptRepository,
	cache interfaces.ResponseCache,
	dispatcher Dispatcher,
	maxVariants int,
	logger *zap.Logger,
) QueryService {
	return &queryServiceImpl{
		repo:        repo,
		cache:       cache,
		dispatcher:  dispatcher,
		maxVariants: maxVariants,
		logger:      logger.Named("QueryService"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *queryServiceImpl) CreateQuery(ctx context.Context, req models.QueryRequest) (*models.ResponseLLM, error) {
	if req.Provider == "" {
		req.Provider = models.ProviderOpenAI
	}
	log := s.logger.With(
		zap.Int("promptID", req.PromptID),
		zap.Int("version", req.Version),
		zap.String("provider", string(req.Provider)),
	)

	// 1. Кеш: попадание возвращается как есть, даже если там записана ошибка
	if req.CacheKey != "" {
		cached, found, err := s.cache.Get(ctx, req.CacheKey)
		switch {
		case errors.Is(err, models.ErrCorruptedCacheEntry):
			cacheLookupsTotal.With(prometheus.Labels{"result": "corrupted"}).Inc()
			log.Warn("Ignoring corrupted cache entry", zap.String("cacheKey", req.CacheKey), zap.Error(err))
		case err != nil:
			return nil, err
		case found:
			cacheLookupsTotal.With(prometheus.Labels{"result": "hit"}).Inc()
			log.Debug("Cache hit", zap.String("cacheKey", req.CacheKey))
			return cached, nil
		default:
			cacheLookupsTotal.With(prometheus.Labels{"result": "miss"}).Inc()
		}
	}

	resp := &models.ResponseLLM{
		PromptID:     req.PromptID,
		Translations: []string{},
		Provider:     req.Provider,
		CreatedAt:    s.now(),
	}

	// 2. Неизвестный промпт - обычный ответ, в кеш не пишется
	exists, err := s.repo.Exists(ctx, req.PromptID)
	if err != nil {
		return nil, err
	}
	if !exists {
		log.Info("Query for unknown prompt")
		resp.Error = fmt.Sprintf("prompt %d does not exist", req.PromptID)
		return resp, nil
	}

	// 3. Версия
	template, found, err := s.resolveTemplate(ctx, req.PromptID, req.Version)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Info("Requested prompt version not found")
		resp.Error = errIncorrectTemplate
	} else {
		s.render(ctx, log, req, template, resp)
	}

	// 6. Запись в кеш, независимо от результата
	if req.CacheKey != "" {
		if err := s.cache.Put(ctx, req.CacheKey, resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// resolveTemplate: отрицательный номер означает последнюю версию.
func (s *queryServiceImpl) resolveTemplate(ctx context.Context, promptID, version int) (string, bool, error) {
	if version < 0 {
		latest, found, err := s.repo.LatestVersion(ctx, promptID)
		return latest.Template, found, err
	}
	return s.repo.GetVersion(ctx, promptID, version)
}

// render подставляет переменные и опрашивает провайдера нужное число раз.
// Первая ошибка прерывает цикл, уже полученные варианты остаются в ответе.
func (s *queryServiceImpl) render(ctx context.Context, log *zap.Logger, req models.QueryRequest, template string, resp *models.ResponseLLM) {
	prompt, err := RenderTemplate(template, TemplateVars{
		Text:     ProtectExcluded(req.Text, req.Exclude.ExceptionList),
		Context:  req.Context,
		Exclude:  RenderExclude(req.Exclude),
		LangAbbr: req.LangAbbr,
	})
	if err != nil {
		log.Warn("Template render failed", zap.Error(err))
		resp.Error = models.FormatError(err)
		return
	}

	variants := s.variants(log, req.Variants)
	log.Debug("Dispatching prompt",
		zap.String("promptHash", utils.PromptFingerprint(prompt)),
		zap.Int("variants", variants),
		zap.Float32("temperature", req.Temperature),
	)

	for i := 0; i < variants; i++ {
		res := s.dispatcher.Complete(ctx, req.Provider, prompt, req.Temperature)
		if !res.OK() {
			resp.Error = models.FormatError(res.Err)
			log.Warn("Variant dispatch failed, remaining variants skipped",
				zap.Int("variant", i+1),
				zap.Int("collected", len(resp.Translations)),
				zap.Error(res.Err),
			)
			return
		}
		resp.Translations = append(resp.Translations, StripMarkers(res.Text, req.Exclude.ExceptionList))
	}
}

func (s *queryServiceImpl) variants(log *zap.Logger, requested int) int {
	if requested < 1 {
		return 1
	}
	if s.maxVariants > 0 && requested > s.maxVariants {
		log.Warn("Requested variants exceed limit, clamping", zap.Int("requested", requested), zap.Int("limit", s.maxVariants))
		return s.maxVariants
	}
	return requested
}
