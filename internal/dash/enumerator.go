package dash

import (
	"fmt"
	"math"
	"math/bits"

	"mpdharvest/internal/models"
)

// maxTimeUnits is the first time value, in timescale units, past the range
// of a uint64 segment time.
const maxTimeUnits = float64(math.MaxUint64)

// enumerator walks a manifest in document order and emits one
// models.Segment per initialization and media segment.
type enumerator struct {
	manifest *Manifest
	baseURL  string
	diag     *diagnostics
	segments []models.Segment
}

func (e *enumerator) run() error {
	m := e.manifest
	for pi := range m.Periods {
		period := &m.Periods[pi]
		e.diag.log.Debugf("period %d id %q", pi, period.ID)
		for ai := range period.Sets {
			as := &period.Sets[ai]
			e.diag.log.Debugf("adaptation set %d mimeType %q", ai, as.MimeType.OrElse(""))
			for ri := range as.Representations {
				if err := e.representation(pi, ai, &as.Representations[ri]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *enumerator) representation(pi, ai int, rep *Representation) error {
	period := &e.manifest.Periods[pi]
	as := &period.Sets[ai]
	id := rep.IDOrEmpty()
	e.diag.log.Debugf("representation id %q bandwidth %d", id, rep.Bandwidth.OrElse(0))

	st, ok := EffectiveTemplate(as, rep)
	if !ok {
		e.diag.add(ScopeRepresentation, "segment template not present for representation %q, other addressing modes not supported", id)
		return nil
	}

	seg := models.Segment{
		RepID:         id,
		Bandwidth:     rep.Bandwidth.OrElse(0),
		Period:        pi,
		AdaptationSet: ai,
	}
	ctx := TemplateContext{
		RepresentationID: id,
		Bandwidth:        seg.Bandwidth,
		Number:           st.StartNumber,
	}

	if initTmpl, ok := st.Initialization.Get(); ok {
		initSeg := seg
		initSeg.IsInit = true
		if err := e.emit(initTmpl, ctx, initSeg); err != nil {
			return err
		}
	} else {
		e.diag.add(ScopeSegment, "initialization segment is not present for representation %q", id)
	}

	media, ok := st.Media.Get()
	if !ok {
		e.diag.add(ScopeSegment, "media is not present for representation %q", id)
		return nil
	}
	if tl, ok := st.Timeline.Get(); ok {
		return e.timeline(media, ctx, seg, tl)
	}
	e.diag.add(ScopeInfo, "segment timeline not present for representation %q", id)
	return e.implicit(media, ctx, seg, st, period)
}

// timeline emits the media segments listed by an explicit SegmentTimeline.
// Numbers increase by one per segment; an entry's t resets the time cursor.
func (e *enumerator) timeline(media string, ctx TemplateContext, seg models.Segment, tl SegmentTimeline) error {
	if len(tl.Segments) == 0 {
		e.diag.add(ScopeSegment, "segment timeline of representation %q is empty", ctx.RepresentationID)
		return nil
	}

	var cursor uint64
	for i, s := range tl.Segments {
		if t, ok := s.T.Get(); ok {
			if t < cursor {
				e.diag.add(ScopeInfo, "timeline entry %d of representation %q starts at %d, before previous end %d", i, ctx.RepresentationID, t, cursor)
			}
			cursor = t
		}
		seg.Duration = s.D
		for k := uint64(0); ; k++ {
			ctx.Time = cursor
			if err := e.emit(media, ctx, seg); err != nil {
				return err
			}
			next, carry := bits.Add64(cursor, s.D, 0)
			if carry != 0 {
				e.diag.add(ScopeRepresentation, "segment time of representation %q overflows after timeline entry %d, remaining segments skipped", ctx.RepresentationID, i)
				return nil
			}
			cursor = next
			ctx.Number++
			if k == s.R {
				break
			}
		}
	}
	return nil
}

// implicit emits media segments of fixed duration until the period (or
// presentation) duration is covered. Without both a total duration and a
// segment duration the count is unbounded, so only the first segment is
// emitted.
func (e *enumerator) implicit(media string, ctx TemplateContext, seg models.Segment, st SegmentTemplate, period *Period) error {
	total, hasTotal := e.manifest.TotalDuration(period)
	segDur, hasSegDur := st.Duration.Get()
	seg.Duration = segDur

	if !hasTotal || !hasSegDur {
		if err := e.emit(media, ctx, seg); err != nil {
			return err
		}
		if !hasTotal {
			e.diag.add(ScopeRepresentation, "total duration not available for representation %q, emitted first segment only", ctx.RepresentationID)
		} else {
			e.diag.add(ScopeRepresentation, "segment duration not available for representation %q, emitted first segment only", ctx.RepresentationID)
		}
		return nil
	}

	if total*float64(st.Timescale) >= maxTimeUnits {
		if err := e.emit(media, ctx, seg); err != nil {
			return err
		}
		e.diag.add(ScopeRepresentation, "total duration of representation %q exceeds the time range of timescale %d, emitted first segment only", ctx.RepresentationID, st.Timescale)
		return nil
	}

	for {
		if err := e.emit(media, ctx, seg); err != nil {
			return err
		}
		next, carry := bits.Add64(ctx.Time, segDur, 0)
		if carry != 0 {
			e.diag.add(ScopeRepresentation, "segment time of representation %q overflows after segment %d, remaining segments skipped", ctx.RepresentationID, ctx.Number)
			return nil
		}
		ctx.Number++
		ctx.Time = next
		if float64(ctx.Time)/float64(st.Timescale) >= total {
			e.diag.log.Debugf("representation %q reached %.3fs after %d segments", ctx.RepresentationID, total, ctx.Number-st.StartNumber)
			return nil
		}
	}
}

func (e *enumerator) emit(template string, ctx TemplateContext, seg models.Segment) error {
	rel, err := ExpandTemplate(template, ctx)
	if err != nil {
		return fmt.Errorf("representation %q: %w", ctx.RepresentationID, err)
	}
	seg.URL = absoluteURL(e.baseURL, rel)
	seg.Number = ctx.Number
	seg.Time = ctx.Time
	e.segments = append(e.segments, seg)
	return nil
}
