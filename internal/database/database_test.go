package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/collab-api/internal/models"
)

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(logger.Silent))
	require.NoError(t, err)

	log := zap.NewNop().Sugar()
	require.NoError(t, Migrate(db, log))

	for _, m := range Models() {
		require.True(t, db.Migrator().HasTable(m))
	}
	require.True(t, db.Migrator().HasIndex(&models.ActivityLog{}, "idx_activity_logs_feed"))
	require.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_project_status"))

	// Running again must be a no-op.
	require.NoError(t, Migrate(db, log))
}
