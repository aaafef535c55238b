// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const nsOfficeRels = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// Default slide size (16:9) in EMU, used when presentation.xml omits sldSz.
const (
	defaultSlideWidth  = 12192000
	defaultSlideHeight = 6858000

	// emuPerPt converts points to English Metric Units.
	emuPerPt = 12700
)

type slideRef struct {
	id  int    // sldId id attribute
	rel string // r:id into the presentation relationships
}

// presentation is the parsed view of the presentation part that the merge
// needs. The XML itself is edited as text so unknown content survives.
type presentation struct {
	part   string
	slides []slideRef
	width  int
	height int
}

func (p *pkg) presentationPart() (string, error) {
	rs, err := p.rels("")
	if err != nil {
		return "", err
	}
	for _, r := range rs.Rels {
		if r.kind() == kindOfficeDocument {
			return resolve("", r.Target), nil
		}
	}
	if p.has("ppt/presentation.xml") {
		return "ppt/presentation.xml", nil
	}
	return "", fmt.Errorf("%w: no presentation part", ErrNotPackage)
}

func (p *pkg) presentation() (*presentation, error) {
	part, err := p.presentationPart()
	if err != nil {
		return nil, err
	}
	data := p.get(part)
	if data == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrNotPackage, part)
	}

	pr := &presentation{part: part, width: defaultSlideWidth, height: defaultSlideHeight}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", part, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "sldId":
			var ref slideRef
			for _, a := range se.Attr {
				switch {
				case a.Name.Local == "id" && a.Name.Space == "":
					ref.id, _ = strconv.Atoi(a.Value)
				case a.Name.Local == "id" && a.Name.Space == nsOfficeRels:
					ref.rel = a.Value
				}
			}
			pr.slides = append(pr.slides, ref)
		case "sldSz":
			for _, a := range se.Attr {
				v, err := strconv.Atoi(a.Value)
				if err != nil {
					continue
				}
				switch a.Name.Local {
				case "cx":
					pr.width = v
				case "cy":
					pr.height = v
				}
			}
		}
	}
	return pr, nil
}

// slideParts returns the slide part names in presentation order.
func (p *pkg) slideParts(pr *presentation) ([]string, error) {
	rs, err := p.rels(pr.part)
	if err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(pr.slides))
	for _, s := range pr.slides {
		r, ok := rs.byID(s.rel)
		if !ok {
			return nil, fmt.Errorf("slide %d: relationship %s not found", s.id, s.rel)
		}
		parts = append(parts, resolve(pr.part, r.Target))
	}
	return parts, nil
}

var (
	sldIdLstRe  = regexp.MustCompile(`(?s)<p:sldIdLst\s*/>|<p:sldIdLst>.*?</p:sldIdLst>`)
	sldSzRe     = regexp.MustCompile(`<p:sldSz\b`)
	appSlidesRe = regexp.MustCompile(`<Slides>\d+</Slides>`)
)

// renderSlideList writes refs as a p:sldIdLst element.
func renderSlideList(refs []slideRef) string {
	var b strings.Builder
	b.WriteString("<p:sldIdLst>")
	for _, r := range refs {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="%s"/>`, r.id, r.rel)
	}
	b.WriteString("</p:sldIdLst>")
	return b.String()
}

// setSlideList replaces the slide list in the presentation XML, inserting
// one before p:sldSz when the source had none.
func setSlideList(data []byte, refs []slideRef) ([]byte, error) {
	list := []byte(renderSlideList(refs))
	if loc := sldIdLstRe.FindIndex(data); loc != nil {
		out := make([]byte, 0, len(data)+len(list))
		out = append(out, data[:loc[0]]...)
		out = append(out, list...)
		return append(out, data[loc[1]:]...), nil
	}
	if loc := sldSzRe.FindIndex(data); loc != nil {
		out := make([]byte, 0, len(data)+len(list))
		out = append(out, data[:loc[0]]...)
		out = append(out, list...)
		return append(out, data[loc[0]:]...), nil
	}
	return nil, fmt.Errorf("presentation has neither a slide list nor a slide size")
}

// nextSlideID returns a sldId id greater than every id in refs.
func nextSlideID(refs []slideRef) int {
	next := 256
	for _, r := range refs {
		if r.id >= next {
			next = r.id + 1
		}
	}
	return next
}

// nextSlidePart returns the first unused ppt/slides/slideN.xml name above
// every existing slide part.
func (p *pkg) nextSlidePart() string {
	highest := 0
	for _, n := range p.order {
		if !strings.HasPrefix(n, "ppt/slides/slide") || !strings.HasSuffix(n, ".xml") {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(n, "ppt/slides/slide"), ".xml")
		if v, err := strconv.Atoi(num); err == nil && v > highest {
			highest = v
		}
	}
	return fmt.Sprintf("ppt/slides/slide%d.xml", highest+1)
}

// layout describes a slide layout part.
type layout struct {
	part string
	name string
	typ  string
	num  int
}

var (
	layoutNameRe = regexp.MustCompile(`<p:cSld\b[^>]*\bname="([^"]*)"`)
	layoutTypeRe = regexp.MustCompile(`<p:sldLayout\b[^>]*\btype="([^"]*)"`)
	layoutNumRe  = regexp.MustCompile(`(\d+)\.xml$`)
)

func parseLayout(part string, data []byte) layout {
	l := layout{part: part}
	if m := layoutNameRe.FindSubmatch(data); m != nil {
		l.name = string(m[1])
	}
	if m := layoutTypeRe.FindSubmatch(data); m != nil {
		l.typ = string(m[1])
	}
	if m := layoutNumRe.FindStringSubmatch(part); m != nil {
		l.num, _ = strconv.Atoi(m[1])
	}
	return l
}

// layouts returns every slide layout in the package, ordered by part number.
func (p *pkg) layouts() []layout {
	var out []layout
	for _, n := range p.order {
		if strings.HasPrefix(n, "ppt/slideLayouts/") && strings.HasSuffix(n, ".xml") && !strings.Contains(n, "/_rels/") {
			out = append(out, parseLayout(n, p.get(n)))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].num < out[j].num })
	return out
}

// layoutMatcher maps source layouts onto the base deck's layouts.
type layoutMatcher struct {
	all    []layout
	byName map[string]string
	byType map[string]string
}

func newLayoutMatcher(ls []layout) *layoutMatcher {
	m := &layoutMatcher{all: ls, byName: map[string]string{}, byType: map[string]string{}}
	for _, l := range ls {
		if _, ok := m.byName[l.name]; !ok && l.name != "" {
			m.byName[l.name] = l.part
		}
		if _, ok := m.byType[l.typ]; !ok && l.typ != "" {
			m.byType[l.typ] = l.part
		}
	}
	return m
}

// match returns the base layout with the same name, else the same type,
// else the first layout.
func (m *layoutMatcher) match(src layout) string {
	if part, ok := m.byName[src.name]; ok && src.name != "" {
		return part
	}
	if part, ok := m.byType[src.typ]; ok && src.typ != "" {
		return part
	}
	if len(m.all) == 0 {
		return ""
	}
	return m.all[0].part
}

// prefer returns the first layout of the given types that exists.
func (m *layoutMatcher) prefer(types ...string) string {
	for _, t := range types {
		if part, ok := m.byType[t]; ok {
			return part
		}
	}
	if len(m.all) == 0 {
		return ""
	}
	return m.all[0].part
}
