package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/windoze95/saltybytes-chef/internal/format"
	"gorm.io/gorm"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DraftStatus is the lifecycle state of a RecipeDraft.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "DRAFT"
	DraftStatusPublished DraftStatus = "PUBLISHED"
	DraftStatusFailed    DraftStatus = "FAILED"
)

// ChatMessage is one turn of a user's conversation with the chef assistant.
type ChatMessage struct {
	gorm.Model
	UserID  uint         `gorm:"index;not null"`
	Role    string       `gorm:"type:varchar(16);not null"`
	Content string       `gorm:"type:text"`
	DraftID *uint        `gorm:"index"`
	Draft   *RecipeDraft `gorm:"foreignKey:DraftID"`
}

// RecipeDraft is a generated recipe awaiting publication.
type RecipeDraft struct {
	gorm.Model
	UserID            uint           `gorm:"index;not null"`
	Prompt            string         `gorm:"type:text"`
	Dietary           string         `gorm:"type:text"`
	Status            DraftStatus    `gorm:"type:varchar(16);index;default:DRAFT"`
	Payload           DraftPayload   `gorm:"type:jsonb"`
	DisplayText       string         `gorm:"type:text"`
	RawIngredients    pq.StringArray `gorm:"type:text[]"`
	RawInstructions   pq.StringArray `gorm:"type:text[]"`
	UsedRetrieval     bool           `gorm:"default:false"`
	PublishedRecipeID *uint          `gorm:"index"`
}

// Recipe is a published recipe owned by a user. Title and DietaryNotes
// sizes follow config.TitleColumnChars and config.NotesColumnChars.
type Recipe struct {
	gorm.Model
	OwnerID         uint           `gorm:"index;not null"`
	Title           string         `gorm:"type:varchar(200);not null"`
	Summary         string         `gorm:"type:text"`
	Ingredients     pq.StringArray `gorm:"type:text[]"`
	Instructions    pq.StringArray `gorm:"type:text[]"`
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Servings        *int
	DietaryNotes    string `gorm:"type:varchar(255)"`
	SourceDraftID   *uint  `gorm:"index"`
}

// DraftPayload stores the recipe form fields as JSONB.
type DraftPayload format.Fields

// Fields returns the payload as form fields.
func (p DraftPayload) Fields() format.Fields {
	return format.Fields(p)
}

// Scan implements the sql.Scanner interface for DraftPayload.
func (p *DraftPayload) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	var result format.Fields
	err := json.Unmarshal(bytes, &result)
	*p = DraftPayload(result)
	return err
}

// Value implements the driver.Valuer interface for DraftPayload.
func (p DraftPayload) Value() (driver.Value, error) {
	return json.Marshal(format.Fields(p))
}
