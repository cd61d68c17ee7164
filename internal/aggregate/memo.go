package aggregate

import (
	"sync"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// Views computes derived views over the current snapshot, memoizing
// pivot results keyed by snapshot identity. A refresh swaps the
// snapshot id, which invalidates everything wholesale; nothing is
// updated incrementally.
type Views struct {
	mu         sync.Mutex
	snapshotID string
	dir        *Directory
	member     *Pivot
	team       *Pivot
	task       *Pivot
}

// NewViews creates an empty view engine.
func NewViews() *Views {
	return &Views{}
}

// Directory returns the member directory for the snapshot.
func (v *Views) Directory(s *model.Snapshot) *Directory {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bind(s)
	return v.dir
}

// MemberPivot returns the memoized member pivot for the snapshot.
func (v *Views) MemberPivot(s *model.Snapshot) *Pivot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bind(s)
	if v.member == nil {
		v.member = MemberPivot(s, v.dir)
	}
	return v.member
}

// TeamPivot returns the memoized team pivot for the snapshot.
func (v *Views) TeamPivot(s *model.Snapshot) *Pivot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bind(s)
	if v.team == nil {
		v.team = TeamPivot(s, v.dir)
	}
	return v.team
}

// TaskPivot returns the memoized task pivot for the snapshot.
func (v *Views) TaskPivot(s *model.Snapshot) *Pivot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bind(s)
	if v.task == nil {
		v.task = TaskPivot(s, v.dir)
	}
	return v.task
}

// bind drops every cached result when the snapshot id changed.
func (v *Views) bind(s *model.Snapshot) {
	if v.snapshotID == s.ID && v.dir != nil {
		return
	}
	v.snapshotID = s.ID
	v.dir = BuildDirectory(s)
	v.member = nil
	v.team = nil
	v.task = nil
}
