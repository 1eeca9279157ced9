package graph

import (
	"sort"

	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// BitfieldStore interns schedule.Bitfield values: every distinct day-set
// is stored once and referred to by index, matching the C++ source's
// bitfield_store (graph_builder.cc, get_or_create_bitfield /
// dedup_bitfields). During construction GetOrCreate does a linear
// structural scan; Dedup (run once at finalization, §4.9 step 2) sorts the
// accumulated bitfields and rewrites every outstanding *schedule.Bitfield
// pointer so that structurally-equal bitfields collapse onto one backing
// array, exactly like the original's tracking_dedupe pass.
type BitfieldStore struct {
	entries []*schedule.Bitfield
}

// NewBitfieldStore returns an empty store.
func NewBitfieldStore() *BitfieldStore {
	return &BitfieldStore{}
}

// GetOrCreate returns the index of bf within the store, appending a fresh
// entry if no structurally-equal bitfield exists yet (invariant P6).
func (s *BitfieldStore) GetOrCreate(bf schedule.Bitfield) int {
	for i, e := range s.entries {
		if e.Equal(bf) {
			return i
		}
	}
	cp := make(schedule.Bitfield, len(bf))
	copy(cp, bf)
	s.entries = append(s.entries, &cp)
	return len(s.entries) - 1
}

// At returns the bitfield stored at idx.
func (s *BitfieldStore) At(idx int) *schedule.Bitfield {
	return s.entries[idx]
}

// Len reports how many distinct bitfields are currently interned.
func (s *BitfieldStore) Len() int {
	return len(s.entries)
}

// Dedup sorts the store's entries and merges any that are structurally
// equal after the sort, rewriting every pointer in refs to point at the
// surviving entry. This mirrors dedup_bitfields in graph_builder.cc: a
// bulk pass run once, after every light connection has already taken a
// pointer into the (pre-sort) store. Since GetOrCreate already interns
// structurally, equal entries only exist here when they were added to the
// store, or changed, without going through GetOrCreate.
// Dedup also returns oldIdxToNewIdx, mapping every pre-dedup index to its
// surviving index in the compacted store — callers holding index-based
// references (track tables, connection-info attributes) use this instead
// of a pointer rewrite.
func (s *BitfieldStore) Dedup(refs []**schedule.Bitfield) (oldIdxToNewIdx []int) {
	type indexed struct {
		idx int
		bf  *schedule.Bitfield
	}
	sorted := make([]indexed, len(s.entries))
	for i, bf := range s.entries {
		sorted[i] = indexed{idx: i, bf: bf}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].bf.Compare(*sorted[j].bf) < 0
	})

	rewrite := make([]*schedule.Bitfield, len(s.entries))
	newIdxOf := make([]int, len(s.entries))
	var deduped []*schedule.Bitfield
	for i, e := range sorted {
		if i > 0 && e.bf.Equal(*sorted[i-1].bf) {
			rewrite[e.idx] = deduped[len(deduped)-1]
			newIdxOf[e.idx] = len(deduped) - 1
			continue
		}
		deduped = append(deduped, e.bf)
		rewrite[e.idx] = e.bf
		newIdxOf[e.idx] = len(deduped) - 1
	}

	oldToNew := make(map[*schedule.Bitfield]*schedule.Bitfield, len(s.entries))
	for i, bf := range s.entries {
		oldToNew[bf] = rewrite[i]
	}
	for _, ref := range refs {
		if *ref == nil {
			continue
		}
		if nv, ok := oldToNew[*ref]; ok {
			*ref = nv
		}
	}
	s.entries = deduped
	return newIdxOf
}
