package postgres

import (
	"context"

	"github.com/crewdeskhq/crewdesk/internal/auth/domain"
)

type auditRepo struct {
	q querier
}

func (r *auditRepo) Record(ctx context.Context, e domain.AuditEntry) error {
	// Empty strings become NULLs so the log reads cleanly in SQL.
	_, err := r.q.Exec(ctx, `
		INSERT INTO system_logs (
			log_id, user_id, action, entity_type, entity_id,
			details, ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, nullable(e.UserID), e.Action, e.EntityType, nullable(e.EntityID),
		nullable(e.Details), nullable(e.IPAddress), nullable(e.UserAgent), e.CreatedAt,
	)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
