package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bomberos-dev/guardias/backend/internal/domain"
)

// Rows are selected with to_char so fecha and the times come back as plain
// strings regardless of driver type mapping.
const assignmentColumns = `
	id_asignacion,
	id_grupo,
	to_char(fecha, 'YYYY-MM-DD'),
	dni,
	to_char(hora_desde, 'HH24:MI:SS'),
	to_char(hora_hasta, 'HH24:MI:SS')
`

// HasOverlap reports whether a persisted assignment for (dni, fecha)
// intersects the half-open interval [desde, hasta). The check deliberately
// ignores the group: one person cannot stand guard in two places at once.
func (r *Repository) HasOverlap(dni int64, fecha string, desde string, hasta string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM guard_assignments
			WHERE dni = $1 AND fecha = $2::date
			AND hora_desde < $4::time AND hora_hasta > $3::time
		)
	`

	exists := false
	if err := r.dbpool.QueryRowContext(ctx, query, dni, fecha, desde, hasta).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// HasOverlapOutsideGroup is HasOverlap minus the rows of one group on that
// date. ReplaceDay uses it: the excluded rows are about to be deleted, so
// conflicts against them do not count.
func (r *Repository) HasOverlapOutsideGroup(dni int64, fecha string, desde string, hasta string, excludeGroupID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM guard_assignments
			WHERE dni = $1 AND fecha = $2::date AND id_grupo <> $5
			AND hora_desde < $4::time AND hora_hasta > $3::time
		)
	`

	exists := false
	if err := r.dbpool.QueryRowContext(ctx, query, dni, fecha, desde, hasta, excludeGroupID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// execBatchInsert builds one multi-row INSERT for the whole batch and fills
// the generated ids back into items.
func (r *Repository) execBatchInsert(ctx context.Context, tx *sql.Tx, groupID int64, items []*domain.GuardAssignment) error {
	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO guard_assignments (id_grupo, fecha, dni, hora_desde, hora_hasta)
		VALUES `)

	params := make([]any, 0, len(items)*5)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 5
		fmt.Fprintf(&sb, "($%d, $%d::date, $%d, $%d::time, $%d::time)", base+1, base+2, base+3, base+4, base+5)
		params = append(params, groupID, item.Fecha, item.DNI, item.HoraDesde, item.HoraHasta)
	}
	sb.WriteString(" RETURNING id_asignacion")

	rows, err := tx.QueryContext(ctx, sb.String(), params...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for i := 0; rows.Next(); i++ {
		if err := rows.Scan(&items[i].ID); err != nil {
			return err
		}
		items[i].GroupID = groupID
	}

	return rows.Err()
}

// CreateAssignments inserts the whole batch inside one transaction; on any
// failure nothing is committed.
func (r *Repository) CreateAssignments(groupID int64, items []*domain.GuardAssignment) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := r.execBatchInsert(ctx, tx, groupID, items); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return int64(len(items)), nil
}

// GetByGroupAndRange returns the group's assignments with fecha in
// [start, end), ordered by (fecha, hora_desde). The end date is excluded,
// matching the calendar widget the admin UI uses.
func (r *Repository) GetByGroupAndRange(groupID int64, start string, end string) ([]*domain.GuardAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + assignmentColumns + `
		FROM guard_assignments
		WHERE id_grupo = $1 AND fecha >= $2::date AND fecha < $3::date
		ORDER BY fecha, hora_desde
	`

	rows, err := r.dbpool.QueryContext(ctx, query, groupID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// GetByFirefighterAndRange returns one firefighter's assignments with fecha
// in [start, end), across all groups unless groupID narrows it.
func (r *Repository) GetByFirefighterAndRange(dni int64, start string, end string, groupID *int64) ([]*domain.GuardAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT ` + assignmentColumns + `
		FROM guard_assignments
		WHERE dni = $1 AND fecha >= $2::date AND fecha < $3::date
	`
	params := []any{dni, start, end}

	if groupID != nil {
		query += ` AND id_grupo = $4`
		params = append(params, *groupID)
	}
	query += ` ORDER BY fecha, hora_desde`

	rows, err := r.dbpool.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// DeleteByIDs removes the given assignments. Ids that no longer exist simply
// do not count, so a repeated call reports zero deletions without erroring.
func (r *Repository) DeleteByIDs(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM guard_assignments WHERE id_asignacion = ANY($1)
	`

	res, err := r.dbpool.ExecContext(ctx, query, ids)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// DeleteByGroupAndRange removes the group's assignments with fecha in
// [start, end). A single statement, atomic on its own.
func (r *Repository) DeleteByGroupAndRange(groupID int64, start string, end string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM guard_assignments
		WHERE id_grupo = $1 AND fecha >= $2::date AND fecha < $3::date
	`

	res, err := r.dbpool.ExecContext(ctx, query, groupID, start, end)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// ReplaceDay swaps the whole roster of (groupID, fecha) for items inside one
// transaction. An empty items clears the day.
func (r *Repository) ReplaceDay(groupID int64, fecha string, items []*domain.GuardAssignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		DELETE FROM guard_assignments WHERE id_grupo = $1 AND fecha = $2::date
	`
	if _, err := tx.ExecContext(ctx, query, groupID, fecha); err != nil {
		return err
	}

	if len(items) > 0 {
		if err := r.execBatchInsert(ctx, tx, groupID, items); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanAssignments(rows *sql.Rows) ([]*domain.GuardAssignment, error) {
	assignments := []*domain.GuardAssignment{}
	for rows.Next() {
		var a domain.GuardAssignment
		dst := []any{
			&a.ID,
			&a.GroupID,
			&a.Fecha,
			&a.DNI,
			&a.HoraDesde,
			&a.HoraHasta,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}
