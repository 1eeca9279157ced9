package schedule

import "strings"

// Bitfield is a fixed-width traffic-day bitmap: bit d set means the
// service it belongs to operates on day d of the schedule horizon (see
// §6 Constants: the horizon runs from SCHEDULE_OFFSET_DAYS before
// schedule_begin through MAX_DAYS). It is deliberately a thin []byte
// wrapper rather than a fixed-size array — callers construct Bitfields at
// whatever width the active horizon requires.
type Bitfield []byte

// NewBitfield allocates a zeroed bitfield wide enough for days.
func NewBitfield(days int) Bitfield {
	return make(Bitfield, (days+7)/8)
}

// ParseBitfield decodes a '0'/'1' string (day 0 first) into a Bitfield,
// the serialized wire format §6 "traffic_days (serialized bitmap)" input
// contract assumes feed adapters have already produced.
func ParseBitfield(serialized string) Bitfield {
	bf := NewBitfield(len(serialized))
	for i, c := range serialized {
		if c == '1' {
			bf.Set(i)
		}
	}
	return bf
}

func (b Bitfield) String() string {
	var sb strings.Builder
	for i := 0; i < len(b)*8; i++ {
		if b.Test(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Test reports whether day d is set. Out-of-range days are never set.
func (b Bitfield) Test(d int) bool {
	if d < 0 {
		return false
	}
	byteIdx := d / 8
	if byteIdx >= len(b) {
		return false
	}
	return b[byteIdx]&(1<<uint(d%8)) != 0
}

// Set marks day d as operating, growing the bitfield through the pointer
// receiver if necessary. Negative days are ignored.
func (b *Bitfield) Set(d int) {
	if d < 0 {
		return
	}
	byteIdx := d / 8
	if byteIdx >= len(*b) {
		grown := make(Bitfield, byteIdx+1)
		copy(grown, *b)
		*b = grown
	}
	(*b)[byteIdx] |= 1 << uint(d%8)
}

// AnySetWithin reports whether any day in [start, end] is set — the
// has_traffic_within_timespan short-circuit of §12.6.
func (b Bitfield) AnySetWithin(start, end int) bool {
	for d := start; d <= end; d++ {
		if b.Test(d) {
			return true
		}
	}
	return false
}

// Shift returns a copy of b with every set day moved up by n (n may be
// negative), matching the C++ source's `traffic_days << day_offset` used
// when building a light_connection's per-section bitfield (§4.4).
func (b Bitfield) Shift(n int) Bitfield {
	if n == 0 {
		return b.clone()
	}
	maxDay := len(b) * 8
	out := NewBitfield(maxDay + abs(n))
	for d := 0; d < maxDay; d++ {
		if b.Test(d) {
			out.Set(d + n)
		}
	}
	return out
}

func (b Bitfield) clone() Bitfield {
	out := make(Bitfield, len(b))
	copy(out, b)
	return out
}

// Equal reports structural equality, trimming both operands to their
// highest set bit first so that two bitfields of different byte-widths
// but the same set days compare equal (invariant P6 relies on this for
// get_or_create semantics; the bulk dedup pass in finalize.go relies on
// it for detecting duplicates after shifting).
func (b Bitfield) Equal(other Bitfield) bool {
	return b.trimmed().compareTrimmed(other.trimmed()) == 0
}

// Compare gives a total order over bitfields (by trimmed big-endian byte
// sequence), used to sort the bitfield store before deduplication.
func (b Bitfield) Compare(other Bitfield) int {
	return b.trimmed().compareTrimmed(other.trimmed())
}

func (b Bitfield) trimmed() Bitfield {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}

func (b Bitfield) compareTrimmed(other Bitfield) int {
	n := len(b)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if b[i] != other[i] {
			if b[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(b) < len(other):
		return -1
	case len(b) > len(other):
		return 1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
