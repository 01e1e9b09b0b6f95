package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/models"
	"github.com/windoze95/saltybytes-chef/internal/repository"
	"go.uber.org/zap"
)

// MaxPromptChars bounds the length of a chat prompt.
const MaxPromptChars = 1000

// ChefService is the business logic layer for the chef chat: it wraps the
// suggestion pipeline with conversation history, drafts and publishing.
type ChefService struct {
	Repo      repository.ChefRepo
	Suggester Suggester
	Prompts   *config.Prompts
}

// ChatReply is the outcome of SendMessage.
type ChatReply struct {
	Message *models.ChatMessage
	Draft   *models.RecipeDraft
	Result  *SuggestionResult
}

// ChatHistory is the user's conversation and current draft.
type ChatHistory struct {
	Messages    []models.ChatMessage
	LatestDraft *models.RecipeDraft
}

// NewChefService is the constructor function for initializing a new ChefService.
func NewChefService(repo repository.ChefRepo, suggester Suggester, prompts *config.Prompts) *ChefService {
	if prompts == nil {
		prompts, _ = config.DefaultPrompts()
	}
	return &ChefService{Repo: repo, Suggester: suggester, Prompts: prompts}
}

// ValidatePrompt checks a chat prompt for length and inappropriate language.
func ValidatePrompt(prompt string) error {
	if prompt == "" {
		return &ValidationError{Message: "prompt is required"}
	}
	if err := checkPromptLength(prompt); err != nil {
		return err
	}
	if isProfane(prompt) {
		return &ValidationError{Message: "prompt contains inappropriate language"}
	}
	return nil
}

func checkPromptLength(prompt string) error {
	if len([]rune(prompt)) > MaxPromptChars {
		return &ValidationError{Message: fmt.Sprintf("prompt must be at most %d characters", MaxPromptChars)}
	}
	return nil
}

// SendMessage records the user's prompt, runs a suggestion and stores the
// resulting draft with an assistant reply. On failure an apology is stored
// and the error returned.
func (s *ChefService) SendMessage(ctx context.Context, userID uint, prompt, dietary string) (*ChatReply, error) {
	prompt = strings.TrimSpace(prompt)
	dietary = strings.TrimSpace(dietary)
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	content := prompt
	if dietary != "" {
		content += "\n\nDietary requirements: " + dietary
	}
	if err := s.Repo.CreateChatMessage(&models.ChatMessage{UserID: userID, Role: models.RoleUser, Content: content}); err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}

	result, err := s.Suggester.Suggest(ctx, SuggestionRequest{Prompt: prompt, Dietary: dietary})
	if err != nil {
		s.saveFailure(ctx, userID, err)
		return nil, err
	}

	draft := &models.RecipeDraft{
		UserID:          userID,
		Prompt:          prompt,
		Dietary:         dietary,
		Status:          models.DraftStatusDraft,
		Payload:         models.DraftPayload(result.FormFields),
		DisplayText:     result.DisplayText,
		RawIngredients:  result.Raw.Ingredients,
		RawInstructions: result.Raw.Instructions,
		UsedRetrieval:   result.Metadata.UsedRetrieval,
	}
	if err := s.Repo.CreateDraft(draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	reply, err := config.RenderPrompt(s.Prompts.Chef.DraftReady, map[string]interface{}{"DisplayText": result.DisplayText})
	if err != nil || reply == "" {
		reply = result.DisplayText
	}
	msg := &models.ChatMessage{UserID: userID, Role: models.RoleAssistant, Content: reply, DraftID: &draft.ID}
	if err := s.Repo.CreateChatMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}

	return &ChatReply{Message: msg, Draft: draft, Result: result}, nil
}

func (s *ChefService) saveFailure(ctx context.Context, userID uint, cause error) {
	text, err := config.RenderPrompt(s.Prompts.Chef.Failure, map[string]interface{}{"Error": cause.Error()})
	if err != nil || text == "" {
		text = "Sorry, I couldn't generate a recipe right now: " + cause.Error()
	}
	if err := s.Repo.CreateChatMessage(&models.ChatMessage{UserID: userID, Role: models.RoleAssistant, Content: text}); err != nil {
		logger.FromContext(ctx).Error("failed to save failure message", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// History returns the user's messages oldest first and the latest draft.
func (s *ChefService) History(userID uint) (*ChatHistory, error) {
	msgs, err := s.Repo.ListChatMessages(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	history := &ChatHistory{Messages: msgs}

	draft, err := s.Repo.GetLatestDraft(userID)
	switch {
	case err == nil:
		history.LatestDraft = draft
	case repository.IsNotFound(err):
	default:
		return nil, fmt.Errorf("failed to get latest draft: %w", err)
	}
	return history, nil
}

// Publish turns the user's draft into a recipe. The draft lookup is scoped
// to userID, so other users' drafts are reported as not found.
func (s *ChefService) Publish(ctx context.Context, userID, draftID uint) (*models.Recipe, error) {
	draft, err := s.Repo.GetDraft(userID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status == models.DraftStatusPublished {
		return nil, ErrAlreadyPublished
	}

	fields := draft.Payload.Fields()
	var missing []string
	if strings.TrimSpace(fields.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(fields.Ingredients) == "" {
		missing = append(missing, "ingredients")
	}
	if strings.TrimSpace(fields.Instructions) == "" {
		missing = append(missing, "instructions")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: "draft is missing required fields: " + strings.Join(missing, ", ")}
	}

	draftRef := draft.ID
	recipe := &models.Recipe{
		OwnerID:         userID,
		Title:           fields.Title,
		Summary:         fields.Summary,
		Ingredients:     splitLines(fields.Ingredients),
		Instructions:    splitLines(fields.Instructions),
		PrepTimeMinutes: fields.PrepTimeMinutes,
		CookTimeMinutes: fields.CookTimeMinutes,
		Servings:        fields.Servings,
		DietaryNotes:    fields.DietaryNotes,
		SourceDraftID:   &draftRef,
	}
	if err := s.Repo.PublishDraft(draft, recipe); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, ErrAlreadyPublished
		}
		return nil, fmt.Errorf("failed to publish draft: %w", err)
	}

	text, err := config.RenderPrompt(s.Prompts.Chef.Published, map[string]interface{}{"Title": recipe.Title})
	if err != nil || text == "" {
		text = fmt.Sprintf("Your recipe %q has been published.", recipe.Title)
	}
	if err := s.Repo.CreateChatMessage(&models.ChatMessage{UserID: userID, Role: models.RoleAssistant, Content: text, DraftID: &draftRef}); err != nil {
		logger.FromContext(ctx).Error("failed to save publish message", zap.Uint("user_id", userID), zap.Error(err))
	}

	logger.FromContext(ctx).Info("draft published",
		zap.Uint("user_id", userID),
		zap.Uint("draft_id", draft.ID),
		zap.Uint("recipe_id", recipe.ID),
	)
	return recipe, nil
}

// Clear removes the user's chat history and unpublished drafts.
func (s *ChefService) Clear(userID uint) error {
	if err := s.Repo.DeleteChatMessages(userID); err != nil {
		return fmt.Errorf("failed to clear chat messages: %w", err)
	}
	if err := s.Repo.DeleteUnpublishedDrafts(userID); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
