package repository

import (
	"context"
	"time"
)

func (r *Repository) FirefighterExists(dni int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM firefighters WHERE dni = $1)
	`

	exists := false
	if err := r.dbpool.QueryRowContext(ctx, query, dni).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}
