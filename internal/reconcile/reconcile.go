// Package reconcile maps housing community-area names onto boundary
// neighborhood names and reports what still fails to join.
package reconcile

import (
	"sort"

	"github.com/sells-group/housing-transit/internal/model"
	"github.com/sells-group/housing-transit/internal/overrides"
)

// Reconciler applies the typo and remap tables to community-area names.
type Reconciler struct {
	typos    map[string]string
	remaps   map[string]string
	excluded map[string]bool
}

// New builds a Reconciler from the patch tables.
func New(t *overrides.Tables) *Reconciler {
	r := &Reconciler{
		typos:    t.Typos,
		remaps:   t.Remaps,
		excluded: make(map[string]bool, len(t.ExcludedPropertyTypes)),
	}
	for _, pt := range t.ExcludedPropertyTypes {
		r.excluded[pt] = true
	}
	return r
}

// Normalize fixes a known misspelling, then applies the many-to-one remap.
// Names in neither table pass through unchanged.
func (r *Reconciler) Normalize(name string) string {
	if fixed, ok := r.typos[name]; ok {
		name = fixed
	}
	if mapped, ok := r.remaps[name]; ok {
		name = mapped
	}
	return name
}

// Excluded reports whether a property type is dropped from the analysis.
func (r *Reconciler) Excluded(propertyType string) bool {
	return r.excluded[propertyType]
}

// Clean normalizes every record's community area and drops excluded property
// types. The input slice is not modified.
func (r *Reconciler) Clean(records []model.HousingRecord) []model.HousingRecord {
	out := make([]model.HousingRecord, 0, len(records))
	for _, rec := range records {
		if r.Excluded(rec.PropertyType) {
			continue
		}
		rec.CommunityArea = r.Normalize(rec.CommunityArea)
		out = append(out, rec)
	}
	return out
}

// CountUnits counts records with a non-empty address per community area.
func CountUnits(records []model.HousingRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Address == "" {
			continue
		}
		counts[rec.CommunityArea]++
	}
	return counts
}

// Orphan is a community area with housing units but no boundary polygon.
type Orphan struct {
	Name  string `json:"name"`
	Units int    `json:"units"`
}

// Mismatch is the residue of an outer join between housing counts and
// boundary names.
type Mismatch struct {
	RightOnly []Orphan // housing names with no polygon
	LeftOnly  []string // polygons with no housing
}

// Empty reports whether every housing name matched a polygon.
func (m Mismatch) Empty() bool {
	return len(m.RightOnly) == 0
}

// OrphanUnits totals the units that cannot be placed on the map.
func (m Mismatch) OrphanUnits() int {
	n := 0
	for _, o := range m.RightOnly {
		n += o.Units
	}
	return n
}

// Diagnose compares counted community areas against neighborhood names.
func Diagnose(counts map[string]int, hoods []model.Neighborhood) Mismatch {
	names := make(map[string]bool, len(hoods))
	var m Mismatch
	for _, h := range hoods {
		names[h.Name] = true
		if _, ok := counts[h.Name]; !ok {
			m.LeftOnly = append(m.LeftOnly, h.Name)
		}
	}
	for name, units := range counts {
		if !names[name] {
			m.RightOnly = append(m.RightOnly, Orphan{Name: name, Units: units})
		}
	}

	sort.Strings(m.LeftOnly)
	sort.Slice(m.RightOnly, func(i, j int) bool { return m.RightOnly[i].Name < m.RightOnly[j].Name })
	return m
}
