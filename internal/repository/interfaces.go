package repository

import "github.com/windoze95/saltybytes-chef/internal/models"

// ChefRepo is the interface for chef chat and draft persistence.
type ChefRepo interface {
	CreateChatMessage(msg *models.ChatMessage) error
	ListChatMessages(userID uint) ([]models.ChatMessage, error)
	DeleteChatMessages(userID uint) error
	CreateDraft(draft *models.RecipeDraft) error
	GetDraft(userID, draftID uint) (*models.RecipeDraft, error)
	GetLatestDraft(userID uint) (*models.RecipeDraft, error)
	DeleteUnpublishedDrafts(userID uint) error
	PublishDraft(draft *models.RecipeDraft, recipe *models.Recipe) error
}
