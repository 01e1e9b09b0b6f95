package repository

import (
	"errors"

	"github.com/windoze95/saltybytes-chef/internal/models"
	"gorm.io/gorm"
)

// ChefRepository is a repository for chef chat messages, drafts and the
// recipes published from them.
type ChefRepository struct {
	DB *gorm.DB
}

// NewChefRepository creates a new ChefRepository.
func NewChefRepository(db *gorm.DB) *ChefRepository {
	return &ChefRepository{DB: db}
}

// CreateChatMessage stores a chat message.
func (r *ChefRepository) CreateChatMessage(msg *models.ChatMessage) error {
	return r.DB.Create(msg).Error
}

// ListChatMessages returns the user's messages, oldest first.
func (r *ChefRepository) ListChatMessages(userID uint) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteChatMessages removes all of the user's messages.
func (r *ChefRepository) DeleteChatMessages(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&models.ChatMessage{}).Error
}

// CreateDraft stores a new draft.
func (r *ChefRepository) CreateDraft(draft *models.RecipeDraft) error {
	return r.DB.Create(draft).Error
}

// GetDraft returns the draft only if it belongs to userID.
func (r *ChefRepository) GetDraft(userID, draftID uint) (*models.RecipeDraft, error) {
	var draft models.RecipeDraft
	err := r.DB.Where("id = ? AND user_id = ?", draftID, userID).First(&draft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{message: "Draft not found"}
		}
		return nil, err
	}
	return &draft, nil
}

// GetLatestDraft returns the user's most recent unpublished draft.
func (r *ChefRepository) GetLatestDraft(userID uint) (*models.RecipeDraft, error) {
	var draft models.RecipeDraft
	err := r.DB.Where("user_id = ? AND status = ?", userID, models.DraftStatusDraft).
		Order("created_at DESC, id DESC").
		First(&draft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{message: "Draft not found"}
		}
		return nil, err
	}
	return &draft, nil
}

// DeleteUnpublishedDrafts removes the user's drafts that were never published.
func (r *ChefRepository) DeleteUnpublishedDrafts(userID uint) error {
	return r.DB.Where("user_id = ? AND status <> ?", userID, models.DraftStatusPublished).
		Delete(&models.RecipeDraft{}).Error
}

// PublishDraft creates recipe and marks draft published in one transaction.
// It returns ErrStateConflict when the draft was published concurrently.
func (r *ChefRepository) PublishDraft(draft *models.RecipeDraft, recipe *models.Recipe) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrStateConflict
			}
			return err
		}

		res := tx.Model(&models.RecipeDraft{}).
			Where("id = ? AND status <> ?", draft.ID, models.DraftStatusPublished).
			Updates(map[string]interface{}{
				"status":              models.DraftStatusPublished,
				"published_recipe_id": recipe.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateConflict
		}

		draft.Status = models.DraftStatusPublished
		draft.PublishedRecipeID = &recipe.ID
		return nil
	})
}
