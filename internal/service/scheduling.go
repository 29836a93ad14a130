package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bomberos-dev/guardias/backend/internal/domain"
	"github.com/bomberos-dev/guardias/backend/internal/utils"
)

// noOverlapConstraint is the exclusion constraint backing the
// no-double-booking rule at the database level.
const noOverlapConstraint = "guard_assignments_no_overlap"

// mapStoreError turns an exclusion-constraint violation into the same
// conflict the pre-write check produces, so the backstop and the check are
// indistinguishable to clients.
func mapStoreError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == noOverlapConstraint {
		return conflictErrorf("el bombero ya tiene una guardia que se superpone")
	}
	return err
}

// CreateAssignments normalizes and validates the batch, verifies every
// candidate against persisted state and against its batch siblings, and only
// then writes. Any conflict rejects the batch as a whole.
func (s *Service) CreateAssignments(groupID int64, items []AssignmentInput) (int64, error) {
	if err := s.checkGroup(groupID); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, validationErrorf("asignaciones debe ser un arreglo no vacío")
	}

	assignments := make([]*domain.GuardAssignment, len(items))
	for i, item := range items {
		a, err := normalizeAssignment(item, "")
		if err != nil {
			return 0, err
		}
		assignments[i] = a
	}

	if err := s.checkFirefighters(assignments); err != nil {
		return 0, err
	}

	release, err := s.lockAssignments(assignments)
	if err != nil {
		return 0, err
	}
	defer release()

	if err := s.checkConflicts(assignments, nil); err != nil {
		return 0, err
	}

	count, err := s.store.CreateAssignments(groupID, assignments)
	if err != nil {
		return 0, mapStoreError(err)
	}

	s.notify(domain.NotificationMessage{
		Type:    domain.NotificationAssignmentsCreated,
		GroupID: groupID,
		Count:   count,
	})

	return count, nil
}

// GetAssignments returns the group's roster with fecha in [start, end).
func (s *Service) GetAssignments(groupID int64, start string, end string) ([]*domain.GuardAssignment, error) {
	if groupID <= 0 {
		return nil, validationErrorf("el id de grupo debe ser un entero positivo")
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	return s.store.GetByGroupAndRange(groupID, start, end)
}

// ReplaceDay swaps the whole roster of (groupID, fecha). The swap is a full
// replacement, never an incremental edit; an empty batch clears the day.
func (s *Service) ReplaceDay(groupID int64, fecha string, items []AssignmentInput) error {
	if err := s.checkGroup(groupID); err != nil {
		return err
	}
	if err := utils.ValidateDate(fecha); err != nil {
		return validationErrorf("%s", err.Error())
	}

	assignments := make([]*domain.GuardAssignment, len(items))
	for i, item := range items {
		a, err := normalizeAssignment(item, fecha)
		if err != nil {
			return err
		}
		assignments[i] = a
	}

	if err := s.checkFirefighters(assignments); err != nil {
		return err
	}

	release, err := s.lockAssignments(assignments)
	if err != nil {
		return err
	}
	defer release()

	// The group's own rows for this day are about to be deleted, so they are
	// excluded from the persisted-state check.
	if err := s.checkConflicts(assignments, &groupID); err != nil {
		return err
	}

	if err := s.store.ReplaceDay(groupID, fecha, assignments); err != nil {
		return mapStoreError(err)
	}

	s.notify(domain.NotificationMessage{
		Type:    domain.NotificationDayReplaced,
		GroupID: groupID,
		Fecha:   fecha,
		Count:   int64(len(assignments)),
	})

	return nil
}

// DeleteByRange removes the group's assignments with fecha in [start, end).
func (s *Service) DeleteByRange(groupID int64, start string, end string) (int64, error) {
	if err := s.checkGroup(groupID); err != nil {
		return 0, err
	}
	if err := validateRange(start, end); err != nil {
		return 0, err
	}

	count, err := s.store.DeleteByGroupAndRange(groupID, start, end)
	if err != nil {
		return 0, err
	}

	s.notify(domain.NotificationMessage{
		Type:    domain.NotificationRangeDeleted,
		GroupID: groupID,
		Desde:   start,
		Hasta:   end,
		Count:   count,
	})

	return count, nil
}

// GetAssignmentsByFirefighter returns one firefighter's assignments in
// [start, end), across every group unless groupID narrows it.
func (s *Service) GetAssignmentsByFirefighter(dni int64, start string, end string, groupID *int64) ([]*domain.GuardAssignment, error) {
	if dni <= 0 {
		return nil, validationErrorf("el dni debe ser un entero positivo")
	}
	if groupID != nil && *groupID <= 0 {
		return nil, validationErrorf("el id de grupo debe ser un entero positivo")
	}
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	return s.store.GetByFirefighterAndRange(dni, start, end, groupID)
}

// DeleteAssignments removes assignments by id. Already-deleted ids count as
// zero, so the operation is idempotent.
func (s *Service) DeleteAssignments(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, validationErrorf("debe indicar al menos un id de asignación")
	}
	for _, id := range ids {
		if id <= 0 {
			return 0, validationErrorf("el id de asignación %d no es válido", id)
		}
	}

	return s.store.DeleteByIDs(ids)
}

func (s *Service) checkGroup(groupID int64) error {
	if groupID <= 0 {
		return validationErrorf("el id de grupo debe ser un entero positivo")
	}

	exists, err := s.directory.GroupExists(groupID)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundErrorf("el grupo %d no existe", groupID)
	}

	return nil
}

func (s *Service) checkFirefighters(assignments []*domain.GuardAssignment) error {
	seen := make(map[int64]bool)
	for _, a := range assignments {
		if seen[a.DNI] {
			continue
		}
		seen[a.DNI] = true

		exists, err := s.directory.FirefighterExists(a.DNI)
		if err != nil {
			return err
		}
		if !exists {
			return notFoundErrorf("el bombero con dni %d no existe", a.DNI)
		}
	}

	return nil
}

// lockAssignments takes one lock per distinct (dni, fecha) in the batch, in
// sorted key order, and returns the release function. A lock already held by
// another request is a conflict, not an error to retry here.
func (s *Service) lockAssignments(assignments []*domain.GuardAssignment) (func(), error) {
	keysSeen := make(map[string]bool)
	keys := []string{}
	for _, a := range assignments {
		key := fmt.Sprintf("guardia_lock_%d_%s", a.DNI, a.Fecha)
		if !keysSeen[key] {
			keysSeen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	tokens := make(map[string]string, len(keys))
	release := func() {
		for key, token := range tokens {
			if err := s.locker.Release(key, token); err != nil {
				slog.Warn("no se pudo liberar el lock de agenda", "key", key, "error", err)
			}
		}
	}

	for _, key := range keys {
		token, err := s.locker.Acquire(key)
		if err != nil {
			release()
			if err == ErrLockHeld {
				return nil, conflictErrorf("otra operación está modificando la agenda, reintente")
			}
			return nil, err
		}
		tokens[key] = token
	}

	return release, nil
}

// checkConflicts rejects the batch when any candidate overlaps a persisted
// assignment or a sibling candidate. excludeGroupID is set by ReplaceDay to
// ignore the rows the swap is about to delete.
func (s *Service) checkConflicts(assignments []*domain.GuardAssignment, excludeGroupID *int64) error {
	// candidates against each other first: no storage round-trip needed
	for i := 0; i < len(assignments); i++ {
		iDesde, _ := utils.ParseTimeOfDay(assignments[i].HoraDesde)
		iHasta, _ := utils.ParseTimeOfDay(assignments[i].HoraHasta)

		for j := i + 1; j < len(assignments); j++ {
			if assignments[i].DNI != assignments[j].DNI || assignments[i].Fecha != assignments[j].Fecha {
				continue
			}

			jDesde, _ := utils.ParseTimeOfDay(assignments[j].HoraDesde)
			jHasta, _ := utils.ParseTimeOfDay(assignments[j].HoraHasta)

			if utils.Overlaps(iDesde, iHasta, jDesde, jHasta) {
				return conflictErrorf("dos asignaciones del dni %d se superponen el %s", assignments[i].DNI, assignments[i].Fecha)
			}
		}
	}

	for _, a := range assignments {
		var overlap bool
		var err error
		if excludeGroupID != nil {
			overlap, err = s.store.HasOverlapOutsideGroup(a.DNI, a.Fecha, a.HoraDesde, a.HoraHasta, *excludeGroupID)
		} else {
			overlap, err = s.store.HasOverlap(a.DNI, a.Fecha, a.HoraDesde, a.HoraHasta)
		}
		if err != nil {
			return err
		}
		if overlap {
			return conflictErrorf("el bombero con dni %d ya tiene una guardia que se superpone el %s entre %s y %s", a.DNI, a.Fecha, a.HoraDesde, a.HoraHasta)
		}
	}

	return nil
}

// notify publishes a roster-change message. The mutation already committed,
// so a publish failure is logged and never fails the request.
func (s *Service) notify(msg domain.NotificationMessage) {
	if to, err := s.directory.GetGroupContactEmail(msg.GroupID); err == nil {
		msg.To = to
	}

	if err := s.publisher.Publish(msg); err != nil {
		slog.Warn("no se pudo publicar la notificación de cambio de agenda", "type", msg.Type, "idGrupo", msg.GroupID, "error", err)
	}
}
