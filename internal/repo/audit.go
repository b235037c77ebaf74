package repo

import (
	"context"

	"github.com/google/uuid"
)

// WriteAudit records who did what. It is a best-effort side channel: the
// caller logs a failure and moves on, never rolling back the primary
// operation because of it.
func (r *Repo) WriteAudit(ctx context.Context, companyID, actorID, action, entityType, entityID, detail string) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO audit_log (id, company_id, actor_id, action, entity_type, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(), companyID, actorID, action, entityType, entityID, detail)
	return err
}
