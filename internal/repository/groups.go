package repository

import (
	"context"
	"time"
)

func (r *Repository) GroupExists(id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM groups WHERE id_grupo = $1)
	`

	exists := false
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// GetGroupContactEmail returns the address roster-change notifications are
// sent to when the WhatsApp pipeline is unavailable.
func (r *Repository) GetGroupContactEmail(id int64) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT contact_email FROM groups WHERE id_grupo = $1
	`

	var email string
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&email); err != nil {
		return "", err
	}

	return email, nil
}
