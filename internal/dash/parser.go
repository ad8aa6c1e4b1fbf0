package dash

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"mpdharvest/internal/logger"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ErrMalformedManifest is returned when the manifest is not well-formed XML.
var ErrMalformedManifest = errors.New("malformed manifest")

// element is a generic XML element. Manifests in the wild nest their
// elements in more ways than a fixed struct layout tolerates, so the parser
// walks this tree with descendant searches instead.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e *element) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// find returns the descendants of e (e excluded) named name, in document
// order. A match is not searched further, and subtrees rooted at an element
// named in skip are not entered.
func (e *element) find(name string, skip ...string) []*element {
	var out []*element
	var walk func(n *element)
	walk = func(n *element) {
		for i := range n.Children {
			c := &n.Children[i]
			if c.XMLName.Local == name {
				out = append(out, c)
				continue
			}
			if lo.Contains(skip, c.XMLName.Local) {
				continue
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

func (e *element) first(name string, skip ...string) *element {
	found := e.find(name, skip...)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// trailing consumes what follows the root element. Only whitespace, comments
// and processing instructions may appear there.
func trailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return fmt.Errorf("unexpected text %q after root element", t)
			}
		default:
			return fmt.Errorf("unexpected %T after root element", tok)
		}
	}
}

// parser carries the diagnostics sink through one Parse call.
type parser struct {
	diag *diagnostics
}

// Parse builds a Manifest from the MPD document in data. manifestURL is stored
// on the result and later used to derive the base URL. Only a document that is
// not well-formed XML is an error; every other problem degrades the affected
// field and is reported as a Diagnostic.
func Parse(data []byte, manifestURL string, log logger.Logger) (*Manifest, []Diagnostic, error) {
	p := &parser{diag: newDiagnostics(log)}
	m, err := p.parse(data, manifestURL)
	return m, p.diag.items, err
}

func (p *parser) parse(data []byte, manifestURL string) (*Manifest, error) {
	var root element
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	if err := trailing(dec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}

	m := &Manifest{URL: manifestURL}

	mpd := &root
	if root.XMLName.Local != "MPD" {
		mpd = root.first("MPD")
	}
	if mpd != nil {
		m.Duration = p.durationAttr(mpd, "mediaPresentationDuration", "MPD")
	} else {
		p.diag.add(ScopeInfo, "no MPD element found, reading periods from %s", root.XMLName.Local)
		mpd = &root
	}

	for i, el := range mpd.find("Period") {
		m.Periods = append(m.Periods, p.period(el, i))
	}
	return m, nil
}

func (p *parser) period(el *element, idx int) Period {
	id, _ := el.attr("id")
	period := Period{
		ID:       id,
		Duration: p.durationAttr(el, "duration", fmt.Sprintf("period %d", idx)),
	}
	for _, as := range el.find("AdaptationSet") {
		period.Sets = append(period.Sets, p.adaptationSet(as))
	}
	return period
}

func (p *parser) adaptationSet(el *element) AdaptationSet {
	var as AdaptationSet
	if mime, ok := el.attr("mimeType"); ok {
		as.MimeType = mo.Some(mime)
	} else {
		p.diag.add(ScopeAttribute, "could not find mimeType of adaptation set")
	}

	// A template nested inside a Representation belongs to that representation.
	if st := el.first("SegmentTemplate", "Representation"); st != nil {
		as.SegmentTemplate = mo.Some(p.segmentTemplate(st))
	}
	for _, rep := range el.find("Representation") {
		as.Representations = append(as.Representations, p.representation(rep))
	}
	return as
}

func (p *parser) representation(el *element) Representation {
	var rep Representation
	if id, ok := el.attr("id"); ok {
		rep.ID = mo.Some(id)
	} else {
		p.diag.add(ScopeAttribute, "could not find id of representation")
	}

	if raw, ok := el.attr("bandwidth"); ok {
		if bw, err := strconv.ParseUint(raw, 10, 64); err == nil {
			rep.Bandwidth = mo.Some(bw)
		} else {
			p.diag.add(ScopeAttribute, "could not parse bandwidth %q of representation %q", raw, rep.IDOrEmpty())
		}
	} else {
		p.diag.add(ScopeAttribute, "could not find bandwidth of representation %q", rep.IDOrEmpty())
	}

	if st := el.first("SegmentTemplate"); st != nil {
		rep.SegmentTemplate = mo.Some(p.segmentTemplate(st))
	}
	return rep
}

func (p *parser) segmentTemplate(el *element) SegmentTemplate {
	st := SegmentTemplate{
		Initialization: optString(el, "initialization"),
		Media:          optString(el, "media"),
		StartNumber:    1,
		Timescale:      1,
	}

	if n, ok := p.uintAttr(el, "startNumber").Get(); ok {
		st.StartNumber = n
	}
	if ts, ok := p.uintAttr(el, "timescale").Get(); ok {
		if ts == 0 {
			p.diag.add(ScopeAttribute, "timescale 0 is unusable, using 1")
		} else {
			st.Timescale = ts
		}
	}
	if d, ok := p.uintAttr(el, "duration").Get(); ok {
		if d == 0 {
			p.diag.add(ScopeAttribute, "segment duration 0 ignored")
		} else {
			st.Duration = mo.Some(d)
		}
	}

	if tl := el.first("SegmentTimeline"); tl != nil {
		st.Timeline = mo.Some(p.timeline(tl))
	}
	return st
}

func (p *parser) timeline(el *element) SegmentTimeline {
	var tl SegmentTimeline
	for i, s := range el.find("S") {
		d, ok := p.uintAttr(s, "d").Get()
		if !ok {
			p.diag.add(ScopeAttribute, "timeline entry %d has no usable d, skipped", i)
			continue
		}
		tl.Segments = append(tl.Segments, S{
			T: p.uintAttr(s, "t"),
			D: d,
			R: p.uintAttr(s, "r").OrElse(0),
		})
	}
	return tl
}

func optString(el *element, name string) mo.Option[string] {
	if v, ok := el.attr(name); ok {
		return mo.Some(v)
	}
	return mo.None[string]()
}

// uintAttr reads an unsigned integer attribute. An unparseable value is reported
// and treated as absent.
func (p *parser) uintAttr(el *element, name string) mo.Option[uint64] {
	raw, ok := el.attr(name)
	if !ok {
		return mo.None[uint64]()
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		p.diag.add(ScopeAttribute, "could not parse %s=%q on %s, ignored", name, raw, el.XMLName.Local)
		return mo.None[uint64]()
	}
	return mo.Some(v)
}

func (p *parser) durationAttr(el *element, name, owner string) mo.Option[float64] {
	raw, ok := el.attr(name)
	if !ok {
		p.diag.add(ScopeInfo, "%s not available in %s", name, owner)
		return mo.None[float64]()
	}
	secs, err := ParseDuration(raw)
	if err != nil {
		p.diag.add(ScopeAttribute, "could not parse %s of %s: %v", name, owner, err)
		return mo.None[float64]()
	}
	return mo.Some(secs)
}
