package timetable

import (
	"github.com/travigo/timetablegraph/pkg/timetable/graph"
	"github.com/travigo/timetablegraph/pkg/timetable/schedule"
)

// pools holds every interning table the builder maintains during
// construction (§4.1 C1, graph_builder.cc get_or_create_category_index /
// get_or_create_provider / get_or_create_string / get_or_create_direction
// / get_or_create_connection_info). Each get-or-create keys on the
// section's content rather than source pointer identity, since two
// schedule.Sections from different feeds routinely carry identical
// category/provider/attribute data and must collapse onto one graph
// object (invariant P6).
type pools struct {
	categories  []*graph.Category
	catIndex    map[categoryKey]int
	providers   []*graph.Provider
	provIndex   map[providerKey]*graph.Provider
	attributes  []*graph.AttributeInfo
	attrIndex   map[attributeKey]*graph.AttributeInfo
	strings     map[string]*string
	connInfos   []*graph.ConnectionInfo
	connIndex   map[connInfoKey]*graph.ConnectionInfo
	fullConns   []*graph.FullConnection
	fullConnIdx map[fullConnKey]*graph.FullConnection
}

func newPools() *pools {
	return &pools{
		catIndex:    make(map[categoryKey]int),
		provIndex:   make(map[providerKey]*graph.Provider),
		attrIndex:   make(map[attributeKey]*graph.AttributeInfo),
		strings:     make(map[string]*string),
		connIndex:   make(map[connInfoKey]*graph.ConnectionInfo),
		fullConnIdx: make(map[fullConnKey]*graph.FullConnection),
	}
}

type fullConnKey struct {
	class              graph.ServiceClass
	price              int
	depTrack, arrTrack int
	info               *graph.ConnectionInfo
}

// getOrCreateFullConnection interns the (class, price, tracks, info)
// tuple the source's mcd::set_get_or_create(connections_, ...) dedupes on.
func (p *pools) getOrCreateFullConnection(class graph.ServiceClass, price, depTrack, arrTrack int, info *graph.ConnectionInfo) *graph.FullConnection {
	key := fullConnKey{class: class, price: price, depTrack: depTrack, arrTrack: arrTrack, info: info}
	if v, ok := p.fullConnIdx[key]; ok {
		return v
	}
	v := &graph.FullConnection{Class: class, Price: price, DepTrack: depTrack, ArrTrack: arrTrack, Info: info}
	p.fullConns = append(p.fullConns, v)
	p.fullConnIdx[key] = v
	return v
}

type categoryKey struct {
	name       string
	outputRule uint8
}

func (p *pools) getOrCreateCategory(c *schedule.Category) int {
	key := categoryKey{name: c.Name, outputRule: c.OutputRule}
	if idx, ok := p.catIndex[key]; ok {
		return idx
	}
	idx := len(p.categories)
	p.categories = append(p.categories, &graph.Category{Name: c.Name, OutputRule: c.OutputRule})
	p.catIndex[key] = idx
	return idx
}

type providerKey struct {
	short, long, full string
}

func (p *pools) getOrCreateProvider(pr *schedule.Provider) *graph.Provider {
	if pr == nil {
		return nil
	}
	key := providerKey{short: pr.ShortName, long: pr.LongName, full: pr.FullName}
	if v, ok := p.provIndex[key]; ok {
		return v
	}
	v := &graph.Provider{ShortName: pr.ShortName, LongName: pr.LongName, FullName: pr.FullName}
	p.providers = append(p.providers, v)
	p.provIndex[key] = v
	return v
}

type attributeKey struct {
	code, text string
}

func (p *pools) getOrCreateAttributeInfo(a *schedule.AttributeInfo) *graph.AttributeInfo {
	key := attributeKey{code: a.Code, text: a.Text}
	if v, ok := p.attrIndex[key]; ok {
		return v
	}
	v := &graph.AttributeInfo{Code: a.Code, Text: a.Text}
	p.attributes = append(p.attributes, v)
	p.attrIndex[key] = v
	return v
}

func (p *pools) getOrCreateString(s string) *string {
	if v, ok := p.strings[s]; ok {
		return v
	}
	v := new(string)
	*v = s
	p.strings[s] = v
	return v
}

// getOrCreateDirection mirrors get_or_create_direction: a direction
// pointing at a station resolves to that station's interned name, a
// direction carrying free text is interned directly, and a nil direction
// stays nil.
func (p *pools) getOrCreateDirection(d *schedule.Direction) *string {
	switch {
	case d == nil:
		return nil
	case d.Station != nil:
		return p.getOrCreateString(d.Station.Name)
	default:
		return p.getOrCreateString(d.Text)
	}
}

type connInfoKey struct {
	line       string
	trainNr    int
	category   int
	direction  string
	hasDir     bool
	provider   providerKey
	hasProv    bool
	mergedWith *graph.ConnectionInfo
	attrs      string
}

// getOrCreateConnectionInfo builds (or reuses) the interned connection
// info for one section, chained onto mergedWith when a multi-section trip
// carries its train-number-change alias forward (§4.4, §12.1).
func (p *pools) getOrCreateConnectionInfo(
	section *schedule.Section,
	mergedWith *graph.ConnectionInfo,
	bitfields *graph.BitfieldStore,
) *graph.ConnectionInfo {
	catIdx := p.getOrCreateCategory(section.Category)
	dir := p.getOrCreateDirection(section.Direction)
	prov := p.getOrCreateProvider(section.Provider)

	attrs := make([]graph.TrafficDayAttribute, 0, len(section.Attributes))
	for _, a := range section.Attributes {
		bfIdx := bitfields.GetOrCreate(a.TrafficDays)
		attrs = append(attrs, graph.TrafficDayAttribute{
			BitfieldIdx: bfIdx,
			Info:        p.getOrCreateAttributeInfo(a.Info),
		})
	}

	key := connInfoKey{
		line:       section.LineID,
		trainNr:    section.TrainNr,
		category:   catIdx,
		mergedWith: mergedWith,
		attrs:      attrsDigest(attrs),
	}
	if dir != nil {
		key.direction, key.hasDir = *dir, true
	}
	if prov != nil {
		key.provider, key.hasProv = providerKey{short: prov.ShortName, long: prov.LongName, full: prov.FullName}, true
	}

	if v, ok := p.connIndex[key]; ok {
		return v
	}

	v := &graph.ConnectionInfo{
		LineID:      section.LineID,
		TrainNr:     section.TrainNr,
		CategoryIdx: catIdx,
		Direction:   dir,
		Provider:    prov,
		MergedWith:  mergedWith,
		Attributes:  attrs,
	}
	p.connInfos = append(p.connInfos, v)
	p.connIndex[key] = v
	return v
}

func attrsDigest(attrs []graph.TrafficDayAttribute) string {
	buf := make([]byte, 0, len(attrs)*8)
	for _, a := range attrs {
		buf = append(buf, byte(a.BitfieldIdx), byte(a.BitfieldIdx>>8), byte(a.BitfieldIdx>>16), byte(a.BitfieldIdx>>24))
		buf = append(buf, a.Info.Code...)
		buf = append(buf, 0)
	}
	return string(buf)
}

// getOrCreateConnectionInfoChain walks a rule-service participant list in
// reverse (graph_builder.cc get_or_create_connection_info(vector)) so that
// the returned first section's info links forward through MergedWith to
// the second section's, and so on to the last.
func (p *pools) getOrCreateConnectionInfoChain(
	sections []*schedule.Section,
	bitfields *graph.BitfieldStore,
) *graph.ConnectionInfo {
	var prev *graph.ConnectionInfo
	for i := len(sections) - 1; i >= 0; i-- {
		prev = p.getOrCreateConnectionInfo(sections[i], prev, bitfields)
	}
	return prev
}
