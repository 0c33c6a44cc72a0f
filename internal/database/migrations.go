package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/models"
)

// AddIndexes adds the composite indexes AutoMigrate cannot express through tags.
func AddIndexes(db *gorm.DB, log *zap.SugaredLogger) error {
	indexes := []struct {
		model   interface{}
		name    string
		columns string
	}{
		// Activity feed: newest entries per project and entity type
		{&models.ActivityLog{}, "idx_activity_logs_feed", "project_id, entity_type, created_at"},
		// Per-status counts for analytics and project boards
		{&models.Task{}, "idx_tasks_project_status", "project_id, status"},
		{&models.TeamMember{}, "idx_team_members_user_id", "user_id"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debugw("index already exists, skipping", "index", idx.name)
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Infow("created index", "index", idx.name, "table", stmt.Schema.Table, "columns", idx.columns)
	}

	return nil
}
