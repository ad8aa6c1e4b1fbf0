package models

// Segment represents one resolved segment of a representation.
// This struct is used across different packages to represent a downloadable chunk of media.
type Segment struct {
	// URL is the fully-qualified URL to fetch the segment from.
	URL string
	// Number is the segment number substituted for $Number$.
	Number uint64
	// Time is the start time of the segment in the timescale of its representation.
	Time uint64
	// Duration is the duration of the segment in the timescale of its representation.
	// Zero when the template does not carry one.
	Duration uint64
	// RepID is the ID of the representation this segment belongs to.
	RepID string
	// Bandwidth of the representation in bits per second.
	Bandwidth uint64
	// IsInit indicates if this is an initialization segment.
	IsInit bool
	// Period and AdaptationSet are the document-order indexes of the owners.
	Period        int
	AdaptationSet int
}

// Kind returns "init" or "media".
func (s Segment) Kind() string {
	if s.IsInit {
		return "init"
	}
	return "media"
}
