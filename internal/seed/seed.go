package seed

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/bomberos-dev/guardias/backend/internal/domain"
	"github.com/bomberos-dev/guardias/backend/internal/repository"
)

// The exclusion constraint is the database-level backstop for the
// no-double-booking rule: same dni, same fecha, intersecting time ranges are
// rejected even if the application-level lock is misconfigured. The group is
// deliberately not part of the constraint: one person cannot stand guard in
// two places at once, whichever groups are involved.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$ BEGIN
		CREATE TYPE timerange AS RANGE (subtype = time);
	EXCEPTION
		WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS groups (
		id_grupo BIGSERIAL PRIMARY KEY,
		nombre TEXT NOT NULL UNIQUE,
		contact_email TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS firefighters (
		dni BIGINT PRIMARY KEY,
		nombre TEXT NOT NULL,
		apellido TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS guard_assignments (
		id_asignacion BIGSERIAL PRIMARY KEY,
		id_grupo BIGINT NOT NULL REFERENCES groups (id_grupo) ON DELETE CASCADE,
		fecha DATE NOT NULL,
		dni BIGINT NOT NULL REFERENCES firefighters (dni),
		hora_desde TIME NOT NULL,
		hora_hasta TIME NOT NULL,
		CHECK (hora_desde < hora_hasta),
		CONSTRAINT guard_assignments_no_overlap EXCLUDE USING gist (
			dni WITH =,
			fecha WITH =,
			timerange(hora_desde, hora_hasta) WITH &&
		)
	)`,
	`CREATE INDEX IF NOT EXISTS guard_assignments_group_fecha_idx
		ON guard_assignments (id_grupo, fecha, hora_desde)`,
}

func CreateSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("no se pudo ejecutar la sentencia de esquema: %w", err)
		}
	}
	return nil
}

var demoGroups = []struct {
	Nombre       string
	ContactEmail string
}{
	{"Cuartel Centro", "centro@bomberos.example"},
	{"Destacamento Norte", "norte@bomberos.example"},
}

var demoFirefighters = []struct {
	DNI      int64
	Nombre   string
	Apellido string
}{
	{28456123, "María", "Godoy"},
	{30123987, "Julián", "Paredes"},
	{27890345, "Carla", "Ibáñez"},
	{31567204, "Federico", "Roldán"},
}

// InsertDemoData loads the demo groups and firefighters and fills one week of
// two daily shifts per group, rotating the crew so no firefighter is ever
// double-booked.
func InsertDemoData(db *sql.DB, repo *repository.Repository) error {
	groupIDs := make([]int64, 0, len(demoGroups))
	for _, g := range demoGroups {
		var id int64
		query := `
			INSERT INTO groups (nombre, contact_email) VALUES ($1, $2)
			ON CONFLICT (nombre) DO UPDATE SET contact_email = EXCLUDED.contact_email
			RETURNING id_grupo
		`
		if err := db.QueryRow(query, g.Nombre, g.ContactEmail).Scan(&id); err != nil {
			return err
		}
		groupIDs = append(groupIDs, id)
	}

	for _, f := range demoFirefighters {
		query := `
			INSERT INTO firefighters (dni, nombre, apellido) VALUES ($1, $2, $3)
			ON CONFLICT (dni) DO NOTHING
		`
		if _, err := db.Exec(query, f.DNI, f.Nombre, f.Apellido); err != nil {
			return err
		}
	}

	shifts := []struct{ Desde, Hasta string }{
		{"08:00:00", "14:00:00"},
		{"14:00:00", "20:00:00"},
	}

	start := time.Now().AddDate(0, 0, 1)
	for day := 0; day < 7; day++ {
		fecha := start.AddDate(0, 0, day).Format("2006-01-02")

		for gi, groupID := range groupIDs {
			assignments := make([]*domain.GuardAssignment, len(shifts))
			for si, shift := range shifts {
				// rotate crews across days and groups; a firefighter never
				// appears twice in the same shift slot on the same day
				firefighter := demoFirefighters[(day+gi*len(shifts)+si)%len(demoFirefighters)]
				assignments[si] = &domain.GuardAssignment{
					Fecha:     fecha,
					DNI:       firefighter.DNI,
					HoraDesde: shift.Desde,
					HoraHasta: shift.Hasta,
				}
			}

			if err := repo.ReplaceDay(groupID, fecha, assignments); err != nil {
				return err
			}
			slog.Info("día de demostración cargado", "idGrupo", groupID, "fecha", fecha, "guardias", len(assignments))
		}
	}

	return nil
}
