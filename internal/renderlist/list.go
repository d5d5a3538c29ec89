// Package renderlist collects the sections found visible in a frame, grouped
// by region in the order they were reached.
package renderlist

import (
	"sectionrender/internal/section"
)

// Entry is one visible section and the facings the camera can see.
type Entry struct {
	Section *section.Section
	Faces   section.FaceMask
}

// Batch holds the visible sections of one region.
type Batch struct {
	Region  int64
	Entries []Entry
}

// List is rebuilt every frame by the graph walker.
type List struct {
	batches []*Batch
	used    int
	index   map[int64]int
	count   int
}

func New() *List {
	return &List{index: make(map[int64]int)}
}

// Add appends a section to the batch of its region. Regions keep the order
// in which their first section was added.
func (l *List) Add(s *section.Section, faces section.FaceMask) {
	i, ok := l.index[s.RegionID()]
	if !ok {
		i = l.used
		if i == len(l.batches) {
			l.batches = append(l.batches, &Batch{})
		}
		l.batches[i].Region = s.RegionID()
		l.index[s.RegionID()] = i
		l.used++
	}
	b := l.batches[i]
	b.Entries = append(b.Entries, Entry{Section: s, Faces: faces})
	l.count++
}

// Clear empties the list and keeps the allocated batches.
func (l *List) Clear() {
	for _, b := range l.batches[:l.used] {
		clear(b.Entries)
		b.Entries = b.Entries[:0]
	}
	clear(l.index)
	l.used = 0
	l.count = 0
}

// Count returns the number of sections in the list.
func (l *List) Count() int { return l.count }

// Batches returns the non-empty batches in insertion order.
func (l *List) Batches() []*Batch { return l.batches[:l.used] }

// ForPass calls fn for every section with geometry in pass. Passes drawn in
// reverse order visit regions and sections back to front.
func (l *List) ForPass(pass section.Pass, fn func(region int64, e Entry)) {
	batches := l.Batches()
	if !pass.IsReverseOrder() {
		for _, b := range batches {
			for _, e := range b.Entries {
				if e.Section.Data().Passes[pass] {
					fn(b.Region, e)
				}
			}
		}
		return
	}

	for i := len(batches) - 1; i >= 0; i-- {
		b := batches[i]
		for j := len(b.Entries) - 1; j >= 0; j-- {
			if e := b.Entries[j]; e.Section.Data().Passes[pass] {
				fn(b.Region, e)
			}
		}
	}
}
