// Package carousel computes the layout for the bounded-yet-seemingly-infinite
// home page scroller. The N real sections are tripled into a 3N virtual list;
// the visible window starts at the beginning of the middle copy, and whenever
// the scroll offset drifts within 10% of a section width of either edge a
// single corrective jump of one section width re-centers it. Every rendering
// surface reads its geometry from here so the numbers cannot diverge.
package carousel

const (
	// MobileBreakpoint separates the mobile and desktop dimension formulas.
	MobileBreakpoint = 768

	mobileWidthRatio  = 0.95
	mobileEdgeInset   = 20
	desktopWidthRatio = 0.87
	desktopMaxWidth   = 900

	mobileGap  = 12
	desktopGap = 24

	// boundaryRatio is the fraction of a section width from either edge at
	// which a corrective jump fires.
	boundaryRatio = 0.1
)

// Dimensions holds the per-viewport card geometry.
type Dimensions struct {
	CardWidth float64 `json:"card_width"`
	Gap       float64 `json:"gap"`
	Mobile    bool    `json:"mobile"`
}

// TotalCardWidth is the horizontal space one card occupies including its gap.
func (d Dimensions) TotalCardWidth() float64 {
	return d.CardWidth + d.Gap
}

// Entry is one element of the virtual list. OriginalIndex identifies the real
// section it mirrors, used for display numbering.
type Entry struct {
	Index         int `json:"index"`
	OriginalIndex int `json:"original_index"`
}

// Layout is the full client-renderable description of the scroller.
type Layout struct {
	Dimensions    Dimensions `json:"dimensions"`
	Entries       []Entry    `json:"entries"`
	SectionWidth  float64    `json:"section_width"`
	InitialOffset float64    `json:"initial_offset"`
}

// ComputeDimensions derives card width and gap from the viewport width.
// Mobile cards fill 95% of the viewport but never run closer than 20px to
// the edges; desktop cards take 87% capped at 900px.
func ComputeDimensions(viewportWidth float64) Dimensions {
	if viewportWidth <= 0 {
		return Dimensions{}
	}
	if viewportWidth < MobileBreakpoint {
		return Dimensions{
			CardWidth: min(viewportWidth*mobileWidthRatio, viewportWidth-mobileEdgeInset),
			Gap:       mobileGap,
			Mobile:    true,
		}
	}
	return Dimensions{
		CardWidth: min(viewportWidth*desktopWidthRatio, desktopMaxWidth),
		Gap:       desktopGap,
	}
}

// VirtualEntries triples the n real sections into a 3n virtual list so both
// scroll edges always have a full buffer of real content behind them.
// Entry k mirrors section k mod n.
func VirtualEntries(n int) []Entry {
	if n < 1 {
		return nil
	}
	entries := make([]Entry, 0, 3*n)
	for k := 0; k < 3*n; k++ {
		entries = append(entries, Entry{Index: k, OriginalIndex: k % n})
	}
	return entries
}

// ComputeLayout assembles the full layout for a viewport and section count.
// The initial offset places the window at the start of the middle copy.
func ComputeLayout(viewportWidth float64, sections int) Layout {
	dims := ComputeDimensions(viewportWidth)
	if sections < 1 || dims.CardWidth <= 0 {
		return Layout{Dimensions: dims}
	}
	sectionWidth := dims.TotalCardWidth() * float64(sections)
	return Layout{
		Dimensions:    dims,
		Entries:       VirtualEntries(sections),
		SectionWidth:  sectionWidth,
		InitialOffset: sectionWidth,
	}
}

// MaxScroll is the largest reachable scroll offset for the virtual list.
func (l Layout) MaxScroll(viewportWidth float64) float64 {
	total := l.Dimensions.TotalCardWidth() * float64(len(l.Entries))
	if total <= viewportWidth {
		return 0
	}
	return total - viewportWidth
}

// Correct applies the boundary-reset rule to a scroll offset. When the offset
// has drifted into the leading 10% of the first copy it jumps forward by one
// section width; within 10% of maxScroll it jumps backward. At most one jump
// is applied per call, which keeps the visible copy the middle one as long as
// no single gesture moves more than a full section width.
func (l Layout) Correct(scrollLeft, maxScroll float64) (offset float64, jumped bool) {
	if l.SectionWidth <= 0 {
		return scrollLeft, false
	}
	margin := l.SectionWidth * boundaryRatio
	if scrollLeft <= margin {
		return scrollLeft + l.SectionWidth, true
	}
	if scrollLeft >= maxScroll-margin {
		return scrollLeft - l.SectionWidth, true
	}
	return scrollLeft, false
}
