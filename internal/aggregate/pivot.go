package aggregate

import (
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// RowKind distinguishes pivot row flavors for rendering.
type RowKind string

const (
	RowData     RowKind = "data"
	RowSubtotal RowKind = "subtotal"
	RowTotal    RowKind = "total"
)

// PivotRow is one row of a pivot: a label, per-week cells and the row
// total. A cell key absent from Cells means no entry landed there; a
// present zero is a true logged zero. Both sum identically.
type PivotRow struct {
	Key   string             `json:"key"`
	Team  string             `json:"team,omitempty"`
	Kind  RowKind            `json:"kind"`
	Cells map[string]float64 `json:"cells"`
	Total float64            `json:"total"`
}

// Pivot is a rows-by-ISO-week hours aggregation. Weeks holds the
// column keys in order: only weeks with any non-zero activity
// anywhere in the filtered data appear, so gaps are omitted rather
// than zero-filled. The last row is the grand total.
type Pivot struct {
	Weeks []string   `json:"weeks"`
	Rows  []PivotRow `json:"rows"`
}

// bucket is one filtered, dated, member-resolved entry.
type bucket struct {
	week   string
	member Member
	taskID int64
	hours  float64
}

// buckets resolves and filters every entry once: entries without a
// derivable date, without a resolvable member, or from excluded teams
// do not reach any pivot.
func buckets(s *model.Snapshot, dir *Directory) []bucket {
	out := make([]bucket, 0, len(s.TimeEntries))
	for _, e := range s.TimeEntries {
		date, ok := EntryDate(e)
		if !ok {
			continue
		}
		member, ok := dir.Lookup(entryUserID(e))
		if !ok || member.Excluded() {
			continue
		}
		out = append(out, bucket{
			week:   WeekID(date),
			member: member,
			taskID: e.TaskID,
			hours:  EntryHours(e),
		})
	}
	return out
}

// activeWeeks returns the sorted set of ISO weeks holding any
// non-zero hours. YYYY-Www sorts correctly as a string within a
// four-digit-year era.
func activeWeeks(bs []bucket) []string {
	seen := make(map[string]struct{})
	for _, b := range bs {
		if b.hours != 0 {
			seen[b.week] = struct{}{}
		}
	}
	weeks := make([]string, 0, len(seen))
	for w := range seen {
		weeks = append(weeks, w)
	}
	sort.Strings(weeks)
	return weeks
}

// TeamTotals sums every non-excluded entry's hours by team, plus the
// grand total, regardless of whether the entry carries a derivable
// date. Dateless entries never reach the week-bucketed views but
// still count here, so this is the number the overview displays.
func TeamTotals(s *model.Snapshot, dir *Directory) ([]TeamHours, float64) {
	perTeam := make(map[string]float64)
	var grand float64
	for _, e := range s.TimeEntries {
		member, ok := dir.Lookup(entryUserID(e))
		if !ok || member.Excluded() {
			continue
		}
		h := EntryHours(e)
		perTeam[member.Team] += h
		grand += h
	}
	return sortedTeamHours(perTeam), grand
}

// MemberPivot builds the weekly member pivot: rows grouped under
// team, sorted by full name within each team, with a team subtotal
// row after each group and a grand-total row last.
func MemberPivot(s *model.Snapshot, dir *Directory) *Pivot {
	bs := buckets(s, dir)

	type memberKey struct {
		id   int64
		name string
		team string
	}
	cells := make(map[memberKey]map[string]float64)
	for _, b := range bs {
		k := memberKey{id: b.member.ID, name: b.member.FullName, team: b.member.Team}
		if cells[k] == nil {
			cells[k] = make(map[string]float64)
		}
		cells[k][b.week] += b.hours
	}

	keys := make([]memberKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].team != keys[j].team {
			return keys[i].team < keys[j].team
		}
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].id < keys[j].id
	})

	pivot := &Pivot{Weeks: activeWeeks(bs)}
	grand := newTotalRow("TOTAL", RowTotal)
	var subtotal *PivotRow

	flushSubtotal := func() {
		if subtotal != nil {
			pivot.Rows = append(pivot.Rows, *subtotal)
			subtotal = nil
		}
	}

	for _, k := range keys {
		if subtotal == nil || subtotal.Team != k.team {
			flushSubtotal()
			row := newTotalRow(k.team+" total", RowSubtotal)
			row.Team = k.team
			subtotal = &row
		}

		row := PivotRow{Key: k.name, Team: k.team, Kind: RowData, Cells: make(map[string]float64)}
		for week, h := range cells[k] {
			row.Cells[week] = h
			row.Total += h
			subtotal.Cells[week] += h
			subtotal.Total += h
			grand.Cells[week] += h
			grand.Total += h
		}
		pivot.Rows = append(pivot.Rows, row)
	}
	flushSubtotal()
	pivot.Rows = append(pivot.Rows, grand)
	return pivot
}

// TeamPivot builds the weekly team pivot, rows sorted by team name.
func TeamPivot(s *model.Snapshot, dir *Directory) *Pivot {
	return keyedPivot(s, dir, func(b bucket) string { return b.member.Team })
}

// TaskPivot builds the weekly task pivot, rows sorted by task name.
func TaskPivot(s *model.Snapshot, dir *Directory) *Pivot {
	names := make(map[int64]string, len(s.Tasks))
	for _, t := range s.Tasks {
		names[t.ID] = t.Name
	}
	return keyedPivot(s, dir, func(b bucket) string {
		if name, ok := names[b.taskID]; ok {
			return name
		}
		return fmt.Sprintf("task #%d", b.taskID)
	})
}

// keyedPivot builds a flat pivot over one row key, rows sorted
// lexicographically, grand total last.
func keyedPivot(s *model.Snapshot, dir *Directory, key func(bucket) string) *Pivot {
	bs := buckets(s, dir)

	cells := make(map[string]map[string]float64)
	for _, b := range bs {
		k := key(b)
		if cells[k] == nil {
			cells[k] = make(map[string]float64)
		}
		cells[k][b.week] += b.hours
	}

	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pivot := &Pivot{Weeks: activeWeeks(bs)}
	grand := newTotalRow("TOTAL", RowTotal)
	for _, k := range keys {
		row := PivotRow{Key: k, Kind: RowData, Cells: make(map[string]float64)}
		for week, h := range cells[k] {
			row.Cells[week] = h
			row.Total += h
			grand.Cells[week] += h
			grand.Total += h
		}
		pivot.Rows = append(pivot.Rows, row)
	}
	pivot.Rows = append(pivot.Rows, grand)
	return pivot
}

func newTotalRow(key string, kind RowKind) PivotRow {
	return PivotRow{Key: key, Kind: kind, Cells: make(map[string]float64)}
}
