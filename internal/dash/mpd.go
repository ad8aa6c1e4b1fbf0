package dash

import (
	"github.com/samber/mo"
)

// Manifest is the root of a parsed Media Presentation Description.
// It is built by one Parse call and never modified afterwards.
type Manifest struct {
	// URL is the location the manifest was retrieved from.
	URL string
	// Duration is mediaPresentationDuration in seconds.
	Duration mo.Option[float64]
	Periods  []Period
}

// Period represents a media content period.
type Period struct {
	ID string
	// Duration in seconds. When absent, the manifest duration applies.
	Duration mo.Option[float64]
	Sets     []AdaptationSet
}

// AdaptationSet represents a set of interchangeable representations.
type AdaptationSet struct {
	// MimeType is informational only.
	MimeType        mo.Option[string]
	SegmentTemplate mo.Option[SegmentTemplate]
	Representations []Representation
}

// Representation represents a specific media stream.
type Representation struct {
	ID              mo.Option[string]
	Bandwidth       mo.Option[uint64]
	SegmentTemplate mo.Option[SegmentTemplate]
}

// IDOrEmpty returns the representation id, or "" when the attribute was missing.
func (r *Representation) IDOrEmpty() string {
	return r.ID.OrElse("")
}

// SegmentTemplate defines the URL structure for segments.
type SegmentTemplate struct {
	Initialization mo.Option[string]
	Media          mo.Option[string]
	// StartNumber defaults to 1.
	StartNumber uint64
	// Duration is the fixed segment duration in Timescale units.
	Duration mo.Option[uint64]
	// Timescale is units per second, defaults to 1.
	Timescale uint64
	Timeline  mo.Option[SegmentTimeline]
}

// SegmentTimeline defines the timeline of segments.
type SegmentTimeline struct {
	Segments []S
}

// S represents a single segment or a series of segments.
type S struct {
	T mo.Option[uint64] // Start time; continues from the previous entry when absent
	D uint64            // Duration
	R uint64            // Repeat count, 0 means the segment occurs once
}

// EffectiveTemplate returns the template that addresses rep: its own when
// present, otherwise the one of its adaptation set. The two are never merged;
// whichever is chosen is used as a whole.
func EffectiveTemplate(as *AdaptationSet, rep *Representation) (SegmentTemplate, bool) {
	if st, ok := rep.SegmentTemplate.Get(); ok {
		return st, true
	}
	return as.SegmentTemplate.Get()
}

// TotalDuration returns the duration bounding the implicit segment count of
// period p: the period's own, else the manifest's.
func (m *Manifest) TotalDuration(p *Period) (float64, bool) {
	if d, ok := p.Duration.Get(); ok {
		return d, true
	}
	return m.Duration.Get()
}
