package service

import (
	"github.com/bomberos-dev/guardias/backend/internal/domain"
	"github.com/bomberos-dev/guardias/backend/internal/utils"
)

// AssignmentInput is one assignment descriptor as clients send it. The admin
// UI and the legacy importer spell the time fields differently (desde/hasta
// vs hora_desde/hora_hasta); both are accepted here and nowhere else. Below
// the service everything is a canonical domain.GuardAssignment.
type AssignmentInput struct {
	DNI       int64  `json:"dni"`
	Fecha     string `json:"fecha"`
	Desde     string `json:"desde"`
	Hasta     string `json:"hasta"`
	HoraDesde string `json:"hora_desde"`
	HoraHasta string `json:"hora_hasta"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeAssignment resolves the alias spellings, validates formats and the
// desde < hasta invariant, and returns the canonical shape. When fixedFecha
// is non-empty (day replacement) the item must either omit fecha or agree
// with it.
func normalizeAssignment(in AssignmentInput, fixedFecha string) (*domain.GuardAssignment, error) {
	if in.DNI <= 0 {
		return nil, validationErrorf("el dni debe ser un entero positivo")
	}

	fecha := in.Fecha
	if fixedFecha != "" {
		if in.Fecha != "" && in.Fecha != fixedFecha {
			return nil, validationErrorf("la asignación del dni %d indica la fecha %s pero el día a reemplazar es %s", in.DNI, in.Fecha, fixedFecha)
		}
		fecha = fixedFecha
	}
	if fecha == "" {
		return nil, validationErrorf("la asignación del dni %d no indica fecha", in.DNI)
	}
	if err := utils.ValidateDate(fecha); err != nil {
		return nil, validationErrorf("%s", err.Error())
	}

	desde := firstNonEmpty(in.Desde, in.HoraDesde)
	hasta := firstNonEmpty(in.Hasta, in.HoraHasta)
	if desde == "" || hasta == "" {
		return nil, validationErrorf("la asignación del dni %d debe indicar hora de inicio y de fin", in.DNI)
	}
	if err := utils.ValidateInterval(desde, hasta); err != nil {
		return nil, validationErrorf("%s", err.Error())
	}

	desde, _ = utils.NormalizeTimeOfDay(desde)
	hasta, _ = utils.NormalizeTimeOfDay(hasta)

	return &domain.GuardAssignment{
		Fecha:     fecha,
		DNI:       in.DNI,
		HoraDesde: desde,
		HoraHasta: hasta,
	}, nil
}

func validateRange(start string, end string) error {
	if err := utils.ValidateDate(start); err != nil {
		return validationErrorf("%s", err.Error())
	}
	if err := utils.ValidateDate(end); err != nil {
		return validationErrorf("%s", err.Error())
	}
	return nil
}
