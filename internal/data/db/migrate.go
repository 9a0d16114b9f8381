package db

import (
	"fmt"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Identification audit
		// =========================
		&types.CrystalIdentification{},

		// =========================
		// Per-user data
		// =========================
		&types.CollectionEntry{},
		&types.JournalEntry{},
		&types.UserProfile{},
		&types.GuidanceSession{},
	)
}

// EnsureIndexes adds composite indexes AutoMigrate cannot express. Both drivers accept the syntax.
func EnsureIndexes(db *gorm.DB) error {
	stmts := map[string]string{
		"idx_collection_entry_user_added": `CREATE INDEX IF NOT EXISTS idx_collection_entry_user_added ON collection_entry(user_id, added_at);`,
		"idx_journal_entry_user_created":  `CREATE INDEX IF NOT EXISTS idx_journal_entry_user_created ON journal_entry(user_id, created_at);`,
		"idx_journal_entry_user_date":     `CREATE INDEX IF NOT EXISTS idx_journal_entry_user_date ON journal_entry(user_id, entry_date);`,
		"idx_guidance_session_user":       `CREATE INDEX IF NOT EXISTS idx_guidance_session_user ON guidance_session(user_id, created_at);`,
	}
	for name, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
	}
	return nil
}
