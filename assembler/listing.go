package assembler

import (
	"fmt"
	"strings"
)

// ListingEntry is one rendered row of an assembly listing: a source
// line paired with the address it assembled to and the bytes it
// contributed.
type ListingEntry struct {
	Line    int
	Address uint16
	Bytes   []byte
	Source  string
}

// Listing renders lines into the source-line + address + encoded-bytes
// report used by the CLI's `-listing` flag.
func Listing(lines []*Line) []ListingEntry {
	out := make([]ListingEntry, 0, len(lines))
	for _, ln := range lines {
		entry := ListingEntry{Line: ln.Number, Source: ln.Raw}
		if ln.Segment != nil {
			entry.Address = ln.Address
		}
		for _, chunk := range segmentChunksForLine(ln) {
			entry.Bytes = append(entry.Bytes, chunk...)
		}
		out = append(out, entry)
	}
	return out
}

// segmentChunksForLine returns the byte chunks ln's own segment
// recorded against ln.Number; most lines contribute at most one chunk,
// but the lookup stays general since nothing prevents a segment from
// recording multiple under one line number.
func segmentChunksForLine(ln *Line) [][]byte {
	if ln.Segment == nil {
		return nil
	}
	var out [][]byte
	for _, c := range ln.Segment.Chunks {
		if c.Line == ln.Number {
			out = append(out, c.Bytes)
		}
	}
	return out
}

// String renders one entry as "AAAA  B1 B2 B3 B4   source text".
func (e ListingEntry) String() string {
	var hex strings.Builder
	for _, b := range e.Bytes {
		fmt.Fprintf(&hex, "%02X ", b)
	}
	return fmt.Sprintf("%04X  %-14s %s", e.Address, strings.TrimSpace(hex.String()), e.Source)
}

// FormatListing renders a full listing as one newline-joined string.
func FormatListing(lines []*Line) string {
	var b strings.Builder
	for _, e := range Listing(lines) {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// SymbolTableListing renders the symbol table as one row per symbol,
// sorted by definition order.
func SymbolTableListing(t *SymbolTable) string {
	var b strings.Builder
	for _, sym := range t.All() {
		kind := "="
		if sym.Kind == SymbolLocation {
			kind = "@"
		}
		if sym.ValueAssigned {
			fmt.Fprintf(&b, "%-16s %s %04X\n", sym.Name, kind, sym.Value)
		} else {
			fmt.Fprintf(&b, "%-16s %s ????\n", sym.Name, kind)
		}
	}
	return b.String()
}
