package db

import (
	types "github.com/yungbote/sonder-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&types.Profile{},

		// Submission pipeline
		&types.Story{},
		&types.StoryEmbedding{},
		&types.SuggestedStory{},
		&types.UserReceivedStory{},

		// Social layer
		&types.Reaction{},
		&types.Comment{},
		&types.Report{},
		&types.Follow{},
	)
}
