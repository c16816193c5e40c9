package assembler

// SegmentKind is one of the five segment-starting PIs.
type SegmentKind int

const (
	SegmentPSEG SegmentKind = iota
	SegmentDSEG
	SegmentCSEG
	SegmentAORG
	SegmentDORG
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentPSEG:
		return "PSEG"
	case SegmentDSEG:
		return "DSEG"
	case SegmentCSEG:
		return "CSEG"
	case SegmentAORG:
		return "AORG"
	case SegmentDORG:
		return "DORG"
	default:
		return "?"
	}
}

// SegmentBytes is the bytecode contributed by one line to its segment;
// Bytes may be empty for a label or comment line that reserves no
// storage of its own.
type SegmentBytes struct {
	Line  int
	Bytes []byte
}

// Segment accumulates the bytes emitted while it is the "current"
// segment, starting at StartingPoint in the 64 KiB byte image.
type Segment struct {
	Kind          SegmentKind
	StartingPoint uint16
	Chunks        []SegmentBytes
}

// Append records bytes emitted by line into this segment.
func (s *Segment) Append(line int, bytes []byte) {
	s.Chunks = append(s.Chunks, SegmentBytes{Line: line, Bytes: bytes})
}

// Size is the total byte length of everything emitted into this
// segment so far.
func (s *Segment) Size() int {
	n := 0
	for _, c := range s.Chunks {
		n += len(c.Bytes)
	}
	return n
}
