package timetable

import (
	"testing"

	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

func TestGetOrCreateCategoryDedupsByContent(t *testing.T) {
	p := newPools()

	i1 := p.getOrCreateCategory(&schedule.Category{Name: "RE"})
	i2 := p.getOrCreateCategory(&schedule.Category{Name: "RE"})
	i3 := p.getOrCreateCategory(&schedule.Category{Name: "ICE"})

	if i1 != i2 {
		t.Errorf("two categories with the same content got different indices: %d vs %d", i1, i2)
	}
	if i1 == i3 {
		t.Error("categories with different content should get different indices")
	}
	if len(p.categories) != 2 {
		t.Errorf("len(categories) = %d, want 2", len(p.categories))
	}
}

func TestGetOrCreateProviderNilAndDedup(t *testing.T) {
	p := newPools()

	if got := p.getOrCreateProvider(nil); got != nil {
		t.Errorf("getOrCreateProvider(nil) = %v, want nil", got)
	}

	pr1 := p.getOrCreateProvider(&schedule.Provider{ShortName: "DB"})
	pr2 := p.getOrCreateProvider(&schedule.Provider{ShortName: "DB"})
	if pr1 != pr2 {
		t.Error("providers with identical content should intern to the same pointer")
	}
	if len(p.providers) != 1 {
		t.Errorf("len(providers) = %d, want 1", len(p.providers))
	}
}

func TestGetOrCreateStringInterns(t *testing.T) {
	p := newPools()

	s1 := p.getOrCreateString("hello")
	s2 := p.getOrCreateString("hello")
	if s1 != s2 {
		t.Error("getOrCreateString should return the same pointer for the same content")
	}
}

func TestGetOrCreateDirectionVariants(t *testing.T) {
	p := newPools()

	if got := p.getOrCreateDirection(nil); got != nil {
		t.Errorf("getOrCreateDirection(nil) = %v, want nil", got)
	}

	byText := p.getOrCreateDirection(&schedule.Direction{Text: "Westbound"})
	if byText == nil || *byText != "Westbound" {
		t.Errorf("getOrCreateDirection(text) = %v, want Westbound", byText)
	}

	st := &schedule.Station{Name: "Central"}
	byStation := p.getOrCreateDirection(&schedule.Direction{Station: st})
	if byStation == nil || *byStation != "Central" {
		t.Errorf("getOrCreateDirection(station) = %v, want Central", byStation)
	}
}

func TestGetOrCreateFullConnectionDedupsOnTuple(t *testing.T) {
	p := newPools()

	info := &graph.ConnectionInfo{LineID: "RE1"}
	fc1 := p.getOrCreateFullConnection(graph.ClassRegionalFast, 1500, -1, -1, info)
	fc2 := p.getOrCreateFullConnection(graph.ClassRegionalFast, 1500, -1, -1, info)
	fc3 := p.getOrCreateFullConnection(graph.ClassRegionalFast, 1600, -1, -1, info)

	if fc1 != fc2 {
		t.Error("identical (class, price, tracks, info) tuples should intern to the same pointer")
	}
	if fc1 == fc3 {
		t.Error("a different price should produce a distinct FullConnection")
	}
}

func TestGetOrCreateConnectionInfoDedupsAcrossSections(t *testing.T) {
	p := newPools()
	bitfields := graph.NewBitfieldStore()

	sectionA := &schedule.Section{LineID: "RE1", TrainNr: 100, Category: &schedule.Category{Name: "RE"}}
	sectionB := &schedule.Section{LineID: "RE1", TrainNr: 100, Category: &schedule.Category{Name: "RE"}}

	ci1 := p.getOrCreateConnectionInfo(sectionA, nil, bitfields)
	ci2 := p.getOrCreateConnectionInfo(sectionB, nil, bitfields)
	if ci1 != ci2 {
		t.Error("two content-equal sections from different feeds should share one ConnectionInfo")
	}

	sectionC := &schedule.Section{LineID: "RE2", TrainNr: 100, Category: &schedule.Category{Name: "RE"}}
	ci3 := p.getOrCreateConnectionInfo(sectionC, nil, bitfields)
	if ci1 == ci3 {
		t.Error("a different line id should produce a distinct ConnectionInfo")
	}
}

func TestGetOrCreateConnectionInfoChainLinksMergedWith(t *testing.T) {
	p := newPools()
	bitfields := graph.NewBitfieldStore()

	sections := []*schedule.Section{
		{LineID: "A", TrainNr: 1, Category: &schedule.Category{Name: "RE"}},
		{LineID: "A", TrainNr: 2, Category: &schedule.Category{Name: "RE"}},
	}

	head := p.getOrCreateConnectionInfoChain(sections, bitfields)
	if head == nil {
		t.Fatal("chain should return a non-nil head")
	}
	if head.TrainNr != 1 {
		t.Errorf("chain head TrainNr = %d, want 1 (first section)", head.TrainNr)
	}
	if head.MergedWith == nil || head.MergedWith.TrainNr != 2 {
		t.Errorf("chain head should merge-with the second section, got %+v", head.MergedWith)
	}
}
