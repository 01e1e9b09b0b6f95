package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-chef/internal/ai"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/models"
	"github.com/windoze95/saltybytes-chef/internal/repository"
	"github.com/windoze95/saltybytes-chef/internal/service"
	"github.com/windoze95/saltybytes-chef/internal/util"
	"go.uber.org/zap"
)

// ChefHandler is the handler for chef chat and suggestion requests.
type ChefHandler struct {
	Chef       *service.ChefService
	Suggester  service.Suggester
	Cfg        *config.Config
	Configured func() bool
}

// NewChefHandler is the constructor function for initializing a new ChefHandler.
func NewChefHandler(cfg *config.Config, chef *service.ChefService, suggester service.Suggester, configured func() bool) *ChefHandler {
	if configured == nil {
		configured = func() bool { return len(cfg.Suggest.MissingCredentials()) == 0 }
	}
	return &ChefHandler{Chef: chef, Suggester: suggester, Cfg: cfg, Configured: configured}
}

type suggestRequest struct {
	Prompt    string `json:"prompt"`
	Dietary   string `json:"dietary"`
	SkipCache bool   `json:"skip_cache"`
}

type messageRequest struct {
	Prompt  string `json:"prompt"`
	Dietary string `json:"dietary_requirements"`
}

type diagnosticRequest struct {
	Prompt    string `json:"prompt"`
	Dietary   string `json:"dietary"`
	SkipCache *bool  `json:"skip_cache"`
}

// Suggest runs a stateless suggestion and returns the full result.
func (h *ChefHandler) Suggest(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.Suggester.Suggest(c.Request.Context(), service.SuggestionRequest{
		Prompt:    req.Prompt,
		Dietary:   req.Dietary,
		SkipCache: req.SkipCache,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetChat returns the user's conversation and latest draft.
func (h *ChefHandler) GetChat(c *gin.Context) {
	userID, ok := util.RequireUserID(c)
	if !ok {
		return
	}

	history, err := h.Chef.History(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	messages := make([]gin.H, 0, len(history.Messages))
	for _, m := range history.Messages {
		messages = append(messages, messageJSON(&m))
	}
	var latest interface{}
	if history.LatestDraft != nil {
		latest = draftJSON(history.LatestDraft)
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":       messages,
		"latest_draft":   latest,
		"api_configured": h.Configured(),
	})
}

// SendMessage stores the user's prompt, generates a draft and returns the
// assistant reply.
func (h *ChefHandler) SendMessage(c *gin.Context) {
	userID, ok := util.RequireUserID(c)
	if !ok {
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	reply, err := h.Chef.SendMessage(c.Request.Context(), userID, req.Prompt, req.Dietary)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"success": true,
		"message": gin.H{"role": reply.Message.Role, "content": reply.Message.Content},
		"draft":   gin.H{"id": reply.Draft.ID, "title": reply.Draft.Payload.Title},
	}
	if h.Cfg.EnvVars.Debug {
		resp["_debug"] = reply.Result.Metadata
	}
	c.JSON(http.StatusOK, resp)
}

// PublishDraft publishes one of the user's drafts as a recipe.
func (h *ChefHandler) PublishDraft(c *gin.Context) {
	userID, ok := util.RequireUserID(c)
	if !ok {
		return
	}

	draftID, ok := idParam(c, "draft_id", "draft")
	if !ok {
		return
	}

	recipe, err := h.Chef.Publish(c.Request.Context(), userID, draftID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"recipe_id": recipe.ID,
		"message":   "Recipe published",
	})
}

// ClearChat deletes the user's conversation and unpublished drafts.
func (h *ChefHandler) ClearChat(c *gin.Context) {
	userID, ok := util.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.Chef.Clear(userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DiagnosticInfo describes the diagnostic endpoint.
func (h *ChefHandler) DiagnosticInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"usage":        `POST {"prompt": "...", "dietary": "...", "skip_cache": true}`,
		"capabilities": h.Cfg.Capabilities(),
		"configured":   h.Configured(),
	})
}

// defaultDiagnosticPrompt is used when a diagnostic request names no prompt.
const defaultDiagnosticPrompt = "simple pasta recipe"

// Diagnostic runs one suggestion, bypassing the caches unless told
// otherwise, and returns its timing profile graded against the latency
// budgets. A missing or malformed body runs the default prompt.
func (h *ChefHandler) Diagnostic(c *gin.Context) {
	var req diagnosticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.FromContext(c.Request.Context()).Debug("diagnostic body ignored", zap.Error(err))
		req = diagnosticRequest{}
	}
	if strings.TrimSpace(req.Prompt) == "" {
		req.Prompt = defaultDiagnosticPrompt
	}
	skipCache := true
	if req.SkipCache != nil {
		skipCache = *req.SkipCache
	}

	result, err := h.Suggester.Suggest(c.Request.Context(), service.SuggestionRequest{
		Prompt:    req.Prompt,
		Dietary:   req.Dietary,
		SkipCache: skipCache,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timing_ms":      result.Metadata.TimingMS,
		"profile":        result.Metadata.Profile,
		"profile_table":  result.Metadata.Profile.Table(),
		"analysis":       result.Metadata.Profile.Analyze(),
		"cache_hit":      result.Metadata.CacheHit,
		"used_retrieval": result.Metadata.UsedRetrieval,
		"recipe_title":   result.FormFields.Title,
	})
}

func messageJSON(m *models.ChatMessage) gin.H {
	return gin.H{
		"id":         m.ID,
		"role":       m.Role,
		"content":    m.Content,
		"draft_id":   m.DraftID,
		"created_at": m.CreatedAt,
	}
}

func draftJSON(d *models.RecipeDraft) gin.H {
	return gin.H{
		"id":             d.ID,
		"status":         d.Status,
		"form_fields":    d.Payload.Fields(),
		"display_text":   d.DisplayText,
		"used_retrieval": d.UsedRetrieval,
		"created_at":     d.CreatedAt,
	}
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	log := logger.FromContext(c.Request.Context())

	var vErr *service.ValidationError
	var cfgErr *service.ConfigurationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
	case repository.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyPublished):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &cfgErr):
		log.Error("suggestion service not configured", zap.Strings("missing", cfgErr.Missing))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recipe suggestions are not configured"})
	case ai.IsGenerationKind(err, ai.GenerationTimeout):
		log.Error("recipe generation timed out", zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Recipe generation timed out"})
	case errors.Is(err, ai.ErrGeneration):
		log.Error("recipe generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Recipe generation failed"})
	default:
		log.Error("chef request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
