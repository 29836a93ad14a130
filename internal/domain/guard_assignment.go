package domain

// GuardAssignment is one firefighter covering guard duty on one calendar date.
// Fecha is YYYY-MM-DD; the times are HH:MM:SS wall clock within that date and
// form the half-open interval [HoraDesde, HoraHasta).
type GuardAssignment struct {
	ID        int64  `json:"idAsignacion"`
	GroupID   int64  `json:"idGrupo"`
	Fecha     string `json:"fecha"`
	DNI       int64  `json:"dni"`
	HoraDesde string `json:"hora_desde"`
	HoraHasta string `json:"hora_hasta"`
}
