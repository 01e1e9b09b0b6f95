package migrations

import (
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"gorm.io/gorm"
)

// chefIndexes are constraints AutoMigrate cannot express.
var chefIndexes = []string{
	// A draft publishes at most one recipe even if two publish requests race.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_recipes_source_draft_unique
		ON recipes (source_draft_id) WHERE source_draft_id IS NOT NULL AND deleted_at IS NULL`,
	// History is always read per user, oldest first.
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_user_created
		ON chat_messages (user_id, created_at)`,
}

// CreateChefIndexes adds the partial and composite indexes used by the chef
// tables. It is idempotent.
func CreateChefIndexes(db *gorm.DB) error {
	for _, stmt := range chefIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	logger.Get().Info("chef indexes ensured")
	return nil
}
