// Package layout assigns terminal width to columns using the
// priority-plus-empty-penalty scoring model documented in spec.md §4.5.
package layout

import (
	"sort"
	"unicode/utf8"
)

// ColumnKind names one of the twelve catalog columns, in display order.
type ColumnKind int

const (
	Branch ColumnKind = iota
	Status
	WorkingDiff
	AheadBehind
	BranchDiff
	Path
	Upstream
	Url
	CiStatus
	Time
	Commit
	Message
)

// Column describes one catalog entry's static properties (spec.md §4.5
// table) plus the per-invocation ideal width and data-presence flag the
// allocator needs to score it.
type Column struct {
	Kind          ColumnKind
	Header        string
	BasePriority  int
	EmptyPenalty  int
	Gated         bool // true if hidden by a flag/condition this invocation
	HasData       bool // at least one row has a value for this column
	IdealWidth    int  // data-derived or estimated width, pre-clamp
}

// Catalog is the full twelve-column definition, in spec.md §4.5 order.
var Catalog = []Column{
	{Kind: Branch, Header: "Branch", BasePriority: 1, EmptyPenalty: 10},
	{Kind: Status, Header: "Status", BasePriority: 6, EmptyPenalty: 10},
	{Kind: WorkingDiff, Header: "HEAD±", BasePriority: 2, EmptyPenalty: 10},
	{Kind: AheadBehind, Header: "main↕", BasePriority: 3, EmptyPenalty: 10},
	{Kind: BranchDiff, Header: "main…±", BasePriority: 4, EmptyPenalty: 10},
	{Kind: Path, Header: "Path", BasePriority: 7, EmptyPenalty: 10},
	{Kind: Upstream, Header: "Remote⇅", BasePriority: 8, EmptyPenalty: 10},
	{Kind: Url, Header: "Url", BasePriority: 8, EmptyPenalty: 10},
	{Kind: CiStatus, Header: "CI", BasePriority: 9, EmptyPenalty: 10},
	{Kind: Time, Header: "Age", BasePriority: 5, EmptyPenalty: 10},
	{Kind: Commit, Header: "Commit", BasePriority: 10, EmptyPenalty: 10},
	{Kind: Message, Header: "Message", BasePriority: 11, EmptyPenalty: 0},
}

// EstimatedWidths are the generous skeleton-phase width assumptions
// (spec.md §4.5's final paragraph) used before real data has arrived.
var EstimatedWidths = map[ColumnKind]int{
	Status:      14,
	WorkingDiff: 9,
	AheadBehind: 7,
	BranchDiff:  9,
	Upstream:    7,
	Time:        15,
	Commit:      8,
}

// Placement is one column's final position and width in the allocated
// layout.
type Placement struct {
	Kind  ColumnKind
	Start int
	Width int
}

// Result is the allocator's output for one render pass.
type Result struct {
	Placements          []Placement
	HiddenNonemptyCount int
}

const columnGap = 2
const messagePreferred = 50
const messageMax = 100
const messageExpandThreshold = 20

// Allocate assigns widths to visible columns given termWidth, following
// spec.md §4.5 steps 1-7. Columns are expected pre-populated with
// Gated/HasData/IdealWidth by the caller (skeleton phase uses
// EstimatedWidths; final phase uses observed data).
func Allocate(columns []Column, termWidth int) Result {
	budget := termWidth - 2 // safety margin, spec.md §4.5
	if budget < 0 {
		budget = 0
	}

	visible := make([]Column, 0, len(columns))
	for _, c := range columns {
		if c.Gated {
			continue
		}
		visible = append(visible, c)
	}

	// clamp ideal width to at least the header's width
	for i := range visible {
		if hw := utf8.RuneCountInString(visible[i].Header); visible[i].IdealWidth < hw {
			visible[i].IdealWidth = hw
		}
	}

	scored := make([]Column, len(visible))
	copy(scored, visible)
	sort.SliceStable(scored, func(i, j int) bool {
		return effectivePriority(scored[i]) < effectivePriority(scored[j])
	})

	allocated := make(map[ColumnKind]int)
	remaining := budget
	first := true
	var messageCol *Column

	for _, c := range scored {
		if c.Kind == Message {
			messageCol = &c
			continue
		}
		cost := c.IdealWidth
		if !first {
			cost += columnGap
		}
		if cost <= remaining {
			allocated[c.Kind] = c.IdealWidth
			remaining -= cost
			first = false
		}
	}

	hidden := 0
	for _, c := range visible {
		if c.Kind == Message {
			continue
		}
		if _, ok := allocated[c.Kind]; !ok && c.HasData {
			hidden++
		}
	}

	if messageCol != nil {
		remainingForMessage := remaining
		if !first {
			remainingForMessage -= columnGap
		}
		if remainingForMessage >= messageExpandThreshold {
			width := messagePreferred
			if remainingForMessage > width {
				width = remainingForMessage
			}
			if width > messageMax {
				width = messageMax
			}
			allocated[Message] = width
		}
	}

	// restore catalog display order; compute start positions with 2-space gaps
	var placements []Placement
	pos := 0
	firstPlaced := true
	for _, c := range Catalog {
		w, ok := allocated[c.Kind]
		if !ok {
			continue
		}
		if !firstPlaced {
			pos += columnGap
		}
		placements = append(placements, Placement{Kind: c.Kind, Start: pos, Width: w})
		pos += w
		firstPlaced = false
	}

	return Result{Placements: placements, HiddenNonemptyCount: hidden}
}

func effectivePriority(c Column) int {
	p := c.BasePriority
	if !c.HasData {
		p += c.EmptyPenalty
	}
	return p
}

// CompactNotation formats a nonnegative integer to at most two visible
// characters: 0-9 as-is, 10-99 as-is, 100-999 as "1C".."9C", 1000-9999 as
// "1K".."9K", and anything ≥10000 saturates at "9K" (spec.md §4.5, §8).
func CompactNotation(n int) string {
	switch {
	case n < 0:
		return CompactNotation(0)
	case n < 100:
		return itoa(n)
	case n < 1000:
		return itoa(n/100) + "C"
	case n < 10000:
		return itoa(n/1000) + "K"
	default:
		return "9K"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
