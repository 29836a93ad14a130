package handler

import (
	"sort"

	"github.com/bomberos-dev/guardias/backend/internal/domain"
)

// stubStore keeps assignments in memory so the whole HTTP surface can be
// exercised without PostgreSQL. Times are canonical HH:MM:SS, so string
// comparison orders intervals correctly.
type stubStore struct {
	nextID int64
	rows   []*domain.GuardAssignment
}

func (m *stubStore) overlaps(dni int64, fecha, desde, hasta string, excludeGroupID *int64) bool {
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

func (m *stubStore) HasOverlap(dni int64, fecha string, desde string, hasta string) (bool, error) {
	return m.overlaps(dni, fecha, desde, hasta, nil), nil
}

func (m *stubStore) HasOverlapOutsideGroup(dni int64, fecha string, desde string, hasta string, excludeGroupID int64) (bool, error) {
	return m.overlaps(dni, fecha, desde, hasta, &excludeGroupID), nil
}

func (m *stubStore) insert(groupID int64, items []*domain.GuardAssignment) {
	for _, item := range items {
		m.nextID++
		row := *item
		row.ID = m.nextID
		row.GroupID = groupID
		m.rows = append(m.rows, &row)
	}
}

func (m *stubStore) CreateAssignments(groupID int64, items []*domain.GuardAssignment) (int64, error) {
	m.insert(groupID, items)
	return int64(len(items)), nil
}

func (m *stubStore) sorted(rows []*domain.GuardAssignment) []*domain.GuardAssignment {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Fecha != rows[j].Fecha {
			return rows[i].Fecha < rows[j].Fecha
		}
		return rows[i].HoraDesde < rows[j].HoraDesde
	})
	return rows
}

func (m *stubStore) GetByGroupAndRange(groupID int64, start string, end string) ([]*domain.GuardAssignment, error) {
	result := []*domain.GuardAssignment{}
	for _, row := range m.rows {
		if row.GroupID == groupID && row.Fecha >= start && row.Fecha < end {
			result = append(result, row)
		}
	}
	return m.sorted(result), nil
}

func (m *stubStore) GetByFirefighterAndRange(dni int64, start string, end string, groupID *int64) ([]*domain.GuardAssignment, error) {
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
	return m.sorted(result), nil
}

func (m *stubStore) DeleteByIDs(ids []int64) (int64, error) {
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

func (m *stubStore) DeleteByGroupAndRange(groupID int64, start string, end string) (int64, error) {
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

func (m *stubStore) ReplaceDay(groupID int64, fecha string, items []*domain.GuardAssignment) error {
	kept := m.rows[:0]
	for _, row := range m.rows {
		if row.GroupID == groupID && row.Fecha == fecha {
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	m.insert(groupID, items)
	return nil
}

type stubDirectory struct {
	groups       map[int64]bool
	firefighters map[int64]bool
}

func (d *stubDirectory) GroupExists(id int64) (bool, error) {
	return d.groups[id], nil
}

func (d *stubDirectory) FirefighterExists(dni int64) (bool, error) {
	return d.firefighters[dni], nil
}

func (d *stubDirectory) GetGroupContactEmail(id int64) (string, error) {
	return "", nil
}

type stubLocker struct{}

func (l *stubLocker) Acquire(key string) (string, error) { return "token", nil }
func (l *stubLocker) Release(key string, token string) error {
	return nil
}

type stubPublisher struct{}

func (p *stubPublisher) Publish(msg domain.NotificationMessage) error { return nil }
