package utils

import (
	"fmt"
	"regexp"
	"time"
)

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate checks the YYYY-MM-DD shape and that the date actually exists
// in the calendar.
func ValidateDate(fecha string) error {
	if !dateRegexp.MatchString(fecha) {
		return fmt.Errorf("la fecha %q no tiene el formato YYYY-MM-DD", fecha)
	}
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		return fmt.Errorf("la fecha %q no es una fecha válida", fecha)
	}
	return nil
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(hora string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", hora); err == nil {
		return t, nil
	}
	if t, err := time.Parse("15:04", hora); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("la hora %q no tiene el formato HH:MM o HH:MM:SS", hora)
}

// NormalizeTimeOfDay returns the canonical HH:MM:SS spelling.
func NormalizeTimeOfDay(hora string) (string, error) {
	t, err := ParseTimeOfDay(hora)
	if err != nil {
		return "", err
	}
	return t.Format("15:04:05"), nil
}

// Overlaps reports whether the half-open intervals [aDesde, aHasta) and
// [bDesde, bHasta) share at least one instant. Intervals that only touch at
// an endpoint do not overlap.
func Overlaps(aDesde, aHasta, bDesde, bHasta time.Time) bool {
	return !(!aDesde.Before(bHasta) || !aHasta.After(bDesde))
}

// ValidateInterval checks that both times parse and that desde < hasta.
func ValidateInterval(desde, hasta string) error {
	d, err := ParseTimeOfDay(desde)
	if err != nil {
		return err
	}
	h, err := ParseTimeOfDay(hasta)
	if err != nil {
		return err
	}
	if !d.Before(h) {
		return fmt.Errorf("la hora de inicio %q debe ser anterior a la hora de fin %q", desde, hasta)
	}
	return nil
}
