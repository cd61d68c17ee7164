// Package aggregate derives dashboard views from an in-memory
// snapshot: the member directory, task classification, ISO-week hour
// buckets, the weekly view and the pivot tables. Everything here is a
// pure recomputation over an immutable snapshot; nothing mutates
// cached state across snapshots.
package aggregate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/timeboard/internal/model"
)

// Teams whose members are omitted from every hours aggregate. They
// still appear in the member directory.
var excludedTeams = map[string]struct{}{
	"DLA":      {},
	"RESEARCH": {},
}

// teamAliases maps team names that appear under more than one
// spelling upstream.
var teamAliases = map[string]string{
	"PLAN": "PLANNING",
}

// classAliases maps member-class spellings to their canonical form.
// LEAAD is a known upstream typo and is kept verbatim; do not "fix" it.
var classAliases = map[string]string{
	"MEMBER": "MEM",
	"LEAAD":  "LEAD",
}

// dashPattern matches en-dash, em-dash, and any hyphen carrying
// whitespace on at least one side. Bare hyphens inside names
// ("Anna-Lena") are left alone.
var dashPattern = regexp.MustCompile(`\s*[\x{2013}\x{2014}]\s*|\s+-\s*|\s*-\s+`)

// ParsedName is the team/name/class triple decoded from a raw
// display name.
type ParsedName struct {
	FullName    string
	Team        string
	MemberClass string
}

// Member is the derived directory record for one resource id.
type Member struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Team        string `json:"team"`
	MemberClass string `json:"member_class"`
}

// Excluded reports whether the member's hours are omitted from
// aggregates.
func (m Member) Excluded() bool {
	_, ok := excludedTeams[m.Team]
	return ok
}

// ParseName decodes the " - "-delimited display-name convention.
//
// Names starting with "!" are leadership: one segment is the full
// name with class SPECIAL, two segments are name and class. Other
// names need exactly team - fullName - class; anything else falls
// back to UNKNOWN/UNKNOWN with the raw string as the full name.
// Returns nil only for a "!" name with an unusable segment count.
func ParseName(raw string) *ParsedName {
	norm := strings.TrimSpace(dashPattern.ReplaceAllString(raw, " - "))

	if strings.HasPrefix(norm, "!") {
		segs := strings.Split(strings.TrimSpace(norm[1:]), " - ")
		switch len(segs) {
		case 1:
			return &ParsedName{
				FullName:    strings.TrimSpace(segs[0]),
				Team:        "LEADERSHIP",
				MemberClass: "SPECIAL",
			}
		case 2:
			return &ParsedName{
				FullName:    strings.TrimSpace(segs[0]),
				Team:        "LEADERSHIP",
				MemberClass: canonicalClass(segs[1]),
			}
		default:
			return nil
		}
	}

	segs := strings.Split(norm, " - ")
	if len(segs) != 3 {
		return &ParsedName{FullName: raw, Team: "UNKNOWN", MemberClass: "UNKNOWN"}
	}
	return &ParsedName{
		FullName:    strings.TrimSpace(segs[1]),
		Team:        canonicalTeam(segs[0]),
		MemberClass: canonicalClass(segs[2]),
	}
}

func canonicalTeam(s string) string {
	team := strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := teamAliases[team]; ok {
		return alias
	}
	return team
}

func canonicalClass(s string) string {
	class := strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := classAliases[class]; ok {
		return alias
	}
	return class
}

// Directory resolves resource ids to members. Records are built
// lazily the first time an id is observed and never rebuilt within
// one snapshot: first-seen wins when a task assignment and a
// time-entry user disagree on the display name.
type Directory struct {
	members map[int64]Member
}

// BuildDirectory scans task assignments first, then time-entry
// embedded users, resolving every referenced resource id once.
func BuildDirectory(s *model.Snapshot) *Directory {
	d := &Directory{members: make(map[int64]Member)}
	for _, t := range s.Tasks {
		for _, r := range t.Resources {
			d.resolve(r.ResourceID(), r.Name)
		}
	}
	for _, e := range s.TimeEntries {
		if e.User != nil {
			d.resolve(entryUserID(e), e.User.Name)
		}
	}
	return d
}

// resolve normalizes either name source to one parse; both task
// assignments and embedded users funnel through here.
func (d *Directory) resolve(id int64, rawName string) {
	if _, ok := d.members[id]; ok {
		return
	}
	parsed := ParseName(rawName)
	if parsed == nil {
		// Unusable "!" form: keep the member visible in the
		// directory under the unknown team.
		parsed = &ParsedName{FullName: rawName, Team: "UNKNOWN", MemberClass: "UNKNOWN"}
	}
	d.members[id] = Member{
		ID:          id,
		Name:        rawName,
		FullName:    parsed.FullName,
		Team:        parsed.Team,
		MemberClass: parsed.MemberClass,
	}
}

// Lookup returns the member record for a resource id.
func (d *Directory) Lookup(id int64) (Member, bool) {
	m, ok := d.members[id]
	return m, ok
}

// Members returns every resolved member sorted by team, then full
// name. Excluded teams are included; only hours aggregates drop them.
func (d *Directory) Members() []Member {
	out := make([]Member, 0, len(d.members))
	for _, m := range d.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// entryUserID picks the entry's user id, falling back to the embedded
// user object when the top-level field is absent.
func entryUserID(e model.TimeEntry) int64 {
	if e.UserID != 0 {
		return e.UserID
	}
	if e.User != nil {
		return e.User.ID
	}
	return 0
}
