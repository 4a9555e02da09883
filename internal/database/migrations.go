package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Check-in lookups: today's rows per project, a user's history
		{"check_ins", "idx_check_ins_user_date", "user_id, date"},
		{"check_ins", "idx_check_ins_created_at", "created_at"},

		// Pending lifecycle lookups
		{"project_join_requests", "idx_join_requests_project_status", "project_id, status"},
		{"project_invitations", "idx_invitations_email_status", "email, status"},

		// Membership
		{"project_members", "idx_project_members_user_id", "user_id"},

		// Audit trail listing
		{"project_invitation_histories", "idx_invitation_histories_project_created", "project_id, created_at"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_name = ? AND index_name = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
