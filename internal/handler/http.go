package handler

import (
	"errors"
	"net/http"
	"strconv"

	"prompt-server/internal/middleware"
	"prompt-server/internal/models"
	"prompt-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIError - тело ответа с ошибкой.
type APIError struct {
	Message string `json:"message"`
}

// PromptHandler обслуживает HTTP API промптов и запросов к LLM.
type PromptHandler struct {
	prompts            service.PromptService
	queries            service.QueryService
	defaultTemperature float32
	logger             *zap.Logger
}

// NewPromptHandler creates a new PromptHandler.
func NewPromptHandler(prompts service.PromptService, queries service.QueryService, defaultTemperature float32, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{
		prompts:            prompts,
		queries:            queries,
		defaultTemperature: defaultTemperature,
		logger:             logger.Named("PromptHandler"),
	}
}

// RegisterRoutes регистрирует маршруты на gin.Engine.
func (h *PromptHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", h.health)
	router.HEAD("/health", h.health)

	router.POST("/create_prompt/:prompt_id", h.createPrompt)
	router.GET("/get_prompt/:prompt_id", h.getPrompt)
	router.GET("/get_prompt/:prompt_id/latest", h.getLatestPrompt)
	router.PATCH("/modify_prompt/:prompt_id", h.modifyPrompt)
	router.POST("/create_query/:prompt_id/:lang_abbr", h.createQuery)
}

// --- DTO --- //

type promptTemplateRequest struct {
	PromptTemplate string `json:"prompt_template" binding:"required"`
}

type createPromptResponse struct {
	PromptID int  `json:"prompt_id"`
	Created  bool `json:"created"`
}

type listVersionsResponse struct {
	PromptID int                    `json:"prompt_id"`
	Versions []models.PromptVersion `json:"versions"`
}

type modifyPromptResponse struct {
	PromptID int    `json:"prompt_id"`
	Version  string `json:"version"`
}

// createQueryRequest: пропущенные variants/temperature/version получают значения по умолчанию.
type createQueryRequest struct {
	Text        string         `json:"text"`
	Context     string         `json:"context"`
	Exclude     models.Exclude `json:"exclude"`
	Variants    *int           `json:"variants"`
	Temperature *float32       `json:"temperature"`
	Version     *int           `json:"version"`
}

// --- Обработчики HTTP --- //

func (h *PromptHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *PromptHandler) createPrompt(c *gin.Context) {
	promptID, ok := h.promptIDParam(c)
	if !ok {
		return
	}
	var req promptTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}

	created, err := h.prompts.CreatePrompt(c.Request.Context(), promptID, req.PromptTemplate)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createPromptResponse{PromptID: promptID, Created: created})
}

func (h *PromptHandler) getPrompt(c *gin.Context) {
	promptID, ok := h.promptIDParam(c)
	if !ok {
		return
	}
	versions, err := h.prompts.ListVersions(c.Request.Context(), promptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listVersionsResponse{PromptID: promptID, Versions: versions})
}

func (h *PromptHandler) getLatestPrompt(c *gin.Context) {
	promptID, ok := h.promptIDParam(c)
	if !ok {
		return
	}
	latest, err := h.prompts.LatestVersion(c.Request.Context(), promptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, latest)
}

func (h *PromptHandler) modifyPrompt(c *gin.Context) {
	promptID, ok := h.promptIDParam(c)
	if !ok {
		return
	}
	var req promptTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}

	version, err := h.prompts.AppendVersion(c.Request.Context(), promptID, req.PromptTemplate)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, modifyPromptResponse{PromptID: promptID, Version: version.Label})
}

func (h *PromptHandler) createQuery(c *gin.Context) {
	promptID, ok := h.promptIDParam(c)
	if !ok {
		return
	}
	var req createQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
		return
	}

	query := models.QueryRequest{
		PromptID:    promptID,
		Version:     -1,
		LangAbbr:    c.Param("lang_abbr"),
		Provider:    models.ParseProvider(c.Query("provider")),
		CacheKey:    c.Query("cache_key"),
		Text:        req.Text,
		Context:     req.Context,
		Exclude:     req.Exclude,
		Variants:    1,
		Temperature: h.defaultTemperature,
	}
	if req.Version != nil {
		query.Version = *req.Version
	}
	if req.Variants != nil {
		query.Variants = *req.Variants
	}
	if req.Temperature != nil {
		query.Temperature = *req.Temperature
	}

	resp, err := h.queries.CreateQuery(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// --- Helpers --- //

func (h *PromptHandler) promptIDParam(c *gin.Context) (int, bool) {
	raw := c.Param("prompt_id")
	promptID, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid prompt_id: " + raw})
		return 0, false
	}
	return promptID, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *PromptHandler) handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrVersionConflict):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
		h.logger.Error("Unhandled service error",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	c.JSON(statusCode, apiErr)
}
