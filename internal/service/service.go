package service

import (
	"github.com/bomberos-dev/guardias/backend/internal/config"
	"github.com/bomberos-dev/guardias/backend/internal/domain"
)

// AssignmentStore is the persistence contract for guard assignments,
// implemented by internal/repository over PostgreSQL.
type AssignmentStore interface {
	HasOverlap(dni int64, fecha string, desde string, hasta string) (bool, error)
	HasOverlapOutsideGroup(dni int64, fecha string, desde string, hasta string, excludeGroupID int64) (bool, error)
	CreateAssignments(groupID int64, items []*domain.GuardAssignment) (int64, error)
	GetByGroupAndRange(groupID int64, start string, end string) ([]*domain.GuardAssignment, error)
	GetByFirefighterAndRange(dni int64, start string, end string, groupID *int64) ([]*domain.GuardAssignment, error)
	DeleteByIDs(ids []int64) (int64, error)
	DeleteByGroupAndRange(groupID int64, start string, end string) (int64, error)
	ReplaceDay(groupID int64, fecha string, items []*domain.GuardAssignment) error
}

// Directory answers existence questions about externally-owned records.
// Groups and firefighters are managed elsewhere; the scheduler only needs to
// know that a reference points at something real.
type Directory interface {
	GroupExists(id int64) (bool, error)
	FirefighterExists(dni int64) (bool, error)
	GetGroupContactEmail(id int64) (string, error)
}

// Locker serializes check-and-write windows per (dni, fecha).
type Locker interface {
	Acquire(key string) (token string, err error)
	Release(key string, token string) error
}

// Publisher delivers roster-change messages to the notification queue.
type Publisher interface {
	Publish(msg domain.NotificationMessage) error
}

type Service struct {
	cfg       *config.Config
	store     AssignmentStore
	directory Directory
	locker    Locker
	publisher Publisher
}

func NewService(cfg *config.Config, store AssignmentStore, directory Directory, locker Locker, publisher Publisher) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		directory: directory,
		locker:    locker,
		publisher: publisher,
	}
}
