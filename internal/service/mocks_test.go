package service

import (
	"sort"

	"github.com/bomberos-dev/guardias/backend/internal/domain"
)

// memStore is an in-memory AssignmentStore. Times are canonical HH:MM:SS, so
// plain string comparison gives the right interval ordering.
type memStore struct {
	nextID int64
	rows   []*domain.GuardAssignment
}

func (m *memStore) overlaps(dni int64, fecha, desde, hasta string, excludeGroupID *int64) bool {
	for _, row := range m.rows {
		if row.DNI != dni || row.Fecha != fecha {
			continue
		}
		if excludeGroupID != nil && row.GroupID == *excludeGroupID {
			continue
		}
		if row.HoraDesde < hasta && row.HoraHasta > desde {
			return true
		}
	}
	return false
}

func (m *memStore) HasOverlap(dni int64, fecha string, desde string, hasta string) (bool, error) {
	return m.overlaps(dni, fecha, desde, hasta, nil), nil
}

func (m *memStore) HasOverlapOutsideGroup(dni int64, fecha string, desde string, hasta string, excludeGroupID int64) (bool, error) {
	return m.overlaps(dni, fecha, desde, hasta, &excludeGroupID), nil
}

func (m *memStore) insert(groupID int64, items []*domain.GuardAssignment) {
	for _, item := range items {
		m.nextID++
		row := *item
		row.ID = m.nextID
		row.GroupID = groupID
		item.ID = row.ID
		item.GroupID = groupID
		m.rows = append(m.rows, &row)
	}
}

func (m *memStore) CreateAssignments(groupID int64, items []*domain.GuardAssignment) (int64, error) {
	m.insert(groupID, items)
	return int64(len(items)), nil
}

func sortAssignments(assignments []*domain.GuardAssignment) {
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].Fecha != assignments[j].Fecha {
			return assignments[i].Fecha < assignments[j].Fecha
		}
		return assignments[i].HoraDesde < assignments[j].HoraDesde
	})
}

func (m *memStore) GetByGroupAndRange(groupID int64, start string, end string) ([]*domain.GuardAssignment, error) {
	result := []*domain.GuardAssignment{}
	for _, row := range m.rows {
		if row.GroupID == groupID && row.Fecha >= start && row.Fecha < end {
			result = append(result, row)
		}
	}
	sortAssignments(result)
	return result, nil
}

func (m *memStore) GetByFirefighterAndRange(dni int64, start string, end string, groupID *int64) ([]*domain.GuardAssignment, error) {
	result := []*domain.GuardAssignment{}
	for _, row := range m.rows {
		if row.DNI != dni || row.Fecha < start || row.Fecha >= end {
			continue
		}
		if groupID != nil && row.GroupID != *groupID {
			continue
		}
		result = append(result, row)
	}
	sortAssignments(result)
	return result, nil
}

func (m *memStore) DeleteByIDs(ids []int64) (int64, error) {
	idSet := make(map[int64]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	kept := m.rows[:0]
	var deleted int64
	for _, row := range m.rows {
		if idSet[row.ID] {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return deleted, nil
}

func (m *memStore) DeleteByGroupAndRange(groupID int64, start string, end string) (int64, error) {
	kept := m.rows[:0]
	var deleted int64
	for _, row := range m.rows {
		if row.GroupID == groupID && row.Fecha >= start && row.Fecha < end {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return deleted, nil
}

func (m *memStore) ReplaceDay(groupID int64, fecha string, items []*domain.GuardAssignment) error {
	if _, err := m.DeleteByGroupAndRange(groupID, fecha, fecha+"~"); err != nil {
		return err
	}
	m.insert(groupID, items)
	return nil
}

type fakeDirectory struct {
	groups       map[int64]bool
	firefighters map[int64]bool
	emails       map[int64]string
}

func (d *fakeDirectory) GroupExists(id int64) (bool, error) {
	return d.groups[id], nil
}

func (d *fakeDirectory) FirefighterExists(dni int64) (bool, error) {
	return d.firefighters[dni], nil
}

func (d *fakeDirectory) GetGroupContactEmail(id int64) (string, error) {
	return d.emails[id], nil
}

type fakeLocker struct {
	held     map[string]bool // keys pre-marked as taken by "someone else"
	acquired []string
	released []string
}

func (l *fakeLocker) Acquire(key string) (string, error) {
	if l.held[key] {
		return "", ErrLockHeld
	}
	l.acquired = append(l.acquired, key)
	return "token-" + key, nil
}

func (l *fakeLocker) Release(key string, token string) error {
	l.released = append(l.released, key)
	return nil
}

type fakePublisher struct {
	messages []domain.NotificationMessage
}

func (p *fakePublisher) Publish(msg domain.NotificationMessage) error {
	p.messages = append(p.messages, msg)
	return nil
}
