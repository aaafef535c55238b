// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck counts and merges .pptx presentations by editing their OOXML
// packages directly. The first presentation is the base; slides of the
// others are appended with the parts they reference, and generated contents
// slides are inserted at the front.
package deck

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/deck-merger/internal/contents"
	"github.com/pdiddy/deck-merger/pkg/types"
)

// DefaultLinesPerSlide is the number of contents lines on one slide.
const DefaultLinesPerSlide = 10

// ContentsOptions controls the generated contents slides.
type ContentsOptions struct {
	Title          string
	ContinuedTitle string
	Labels         contents.Labels
	Font           string
	LinesPerSlide  int
}

// DefaultContentsOptions returns English captions and ten lines per slide.
func DefaultContentsOptions() ContentsOptions {
	return ContentsOptions{
		Title:          "Contents",
		ContinuedTitle: "Contents (continued)",
		Labels:         contents.DefaultLabels(),
		LinesPerSlide:  DefaultLinesPerSlide,
	}
}

// SlideCount returns the number of slides in the presentation at file.
func SlideCount(file string) (int, error) {
	p, err := readPackage(file)
	if err != nil {
		return 0, err
	}
	pr, err := p.presentation()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(file), err)
	}
	return len(pr.slides), nil
}

// Merge combines files in order, prepends contents slides for lines, and
// writes the result to a new temp file in dir, returning its path.
func Merge(files []string, lines []types.ContentsLine, opts ContentsOptions, dir string) (string, error) {
	if len(files) == 0 {
		return "", errors.New("no presentations to merge")
	}

	base, err := readPackage(files[0])
	if err != nil {
		return "", err
	}
	m, err := newMerger(base)
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(files[0]), err)
	}

	for _, f := range files[1:] {
		src, err := readPackage(f)
		if err != nil {
			return "", err
		}
		if err := m.appendDeck(src); err != nil {
			return "", fmt.Errorf("appending %s: %w", filepath.Base(f), err)
		}
	}

	if err := m.insertContents(lines, opts); err != nil {
		return "", err
	}
	if err := m.finish(); err != nil {
		return "", err
	}
	return base.writeTemp(dir)
}

type merger struct {
	dst      *pkg
	pres     *presentation
	presRels *relationships
	ct       *contentTypes
	layouts  *layoutMatcher
	slides   []slideRef
	nextID   int
}

func newMerger(dst *pkg) (*merger, error) {
	pres, err := dst.presentation()
	if err != nil {
		return nil, err
	}
	presRels, err := dst.rels(pres.part)
	if err != nil {
		return nil, err
	}
	ct, err := dst.contentTypes()
	if err != nil {
		return nil, err
	}
	return &merger{
		dst:      dst,
		pres:     pres,
		presRels: presRels,
		ct:       ct,
		layouts:  newLayoutMatcher(dst.layouts()),
		slides:   append([]slideRef(nil), pres.slides...),
		nextID:   nextSlideID(pres.slides),
	}, nil
}

// addSlide stores a slide part and links it from the presentation. The
// caller decides where the returned ref goes in the slide list.
func (m *merger) addSlide(part string, data []byte, rels *relationships) (slideRef, error) {
	m.dst.put(part, data)
	if len(rels.Rels) > 0 {
		if err := m.dst.putRels(part, rels); err != nil {
			return slideRef{}, err
		}
	}
	m.ct.register(part, ctSlide)

	rid := m.presRels.nextRelID()
	m.presRels.Rels = append(m.presRels.Rels, relationship{
		ID:     rid,
		Type:   relTypeBase + kindSlide,
		Target: relativeTarget(m.pres.part, part),
	})
	ref := slideRef{id: m.nextID, rel: rid}
	m.nextID++
	return ref, nil
}

// appendDeck copies every slide of src, in order, to the end of the base.
func (m *merger) appendDeck(src *pkg) error {
	pr, err := src.presentation()
	if err != nil {
		return err
	}
	parts, err := src.slideParts(pr)
	if err != nil {
		return err
	}
	srcCT, err := src.contentTypes()
	if err != nil {
		return err
	}

	// Reserve every destination name first so slide-to-slide links resolve.
	names := make(map[string]string, len(parts))
	for _, sp := range parts {
		n := m.dst.nextSlidePart()
		m.dst.put(n, nil)
		names[sp] = n
	}

	c := &partCopier{m: m, src: src, srcCT: srcCT, slides: names, copied: map[string]string{}}
	for _, sp := range parts {
		if !src.has(sp) {
			return fmt.Errorf("slide part %s missing", sp)
		}
		rels, err := c.rels(sp, names[sp])
		if err != nil {
			return err
		}
		ref, err := m.addSlide(names[sp], src.get(sp), rels)
		if err != nil {
			return err
		}
		m.slides = append(m.slides, ref)
	}
	return nil
}

// partCopier copies parts referenced by one source deck, each at most once.
type partCopier struct {
	m      *merger
	src    *pkg
	srcCT  *contentTypes
	slides map[string]string
	copied map[string]string
}

// rels rewrites the relationships of srcPart for its copy at dstPart.
func (c *partCopier) rels(srcPart, dstPart string) (*relationships, error) {
	rs, err := c.src.rels(srcPart)
	if err != nil {
		return nil, err
	}
	out := &relationships{}
	for _, r := range rs.Rels {
		if r.external() {
			out.Rels = append(out.Rels, r)
			continue
		}
		target := resolve(srcPart, r.Target)
		switch r.kind() {
		case kindNotesSlide, kindComments:
			continue
		case kindSlideLayout:
			lp := c.m.layouts.match(parseLayout(target, c.src.get(target)))
			if lp == "" {
				return nil, errors.New("base presentation has no slide layouts")
			}
			r.Target = relativeTarget(dstPart, lp)
		case kindSlide:
			n, ok := c.slides[target]
			if !ok {
				slog.Warn("dropping link to slide outside the deck", "part", srcPart, "target", target)
				continue
			}
			r.Target = relativeTarget(dstPart, n)
		default:
			n, err := c.copy(target)
			if err != nil {
				return nil, err
			}
			if n == "" {
				slog.Warn("dropping link to missing part", "part", srcPart, "target", target)
				continue
			}
			r.Target = relativeTarget(dstPart, n)
		}
		out.Rels = append(out.Rels, r)
	}
	return out, nil
}

// copy stores part under a free name in the base and returns that name, or
// "" when the source does not contain it.
func (c *partCopier) copy(part string) (string, error) {
	if n, ok := c.copied[part]; ok {
		return n, nil
	}
	if !c.src.has(part) {
		return "", nil
	}

	base := path.Base(part)
	ext := path.Ext(base)
	n := c.m.dst.freeName(path.Dir(part), base[:len(base)-len(ext)], ext)
	c.copied[part] = n
	c.m.dst.put(n, c.src.get(part))
	c.m.ct.register(n, c.srcCT.lookup(part))

	rels, err := c.rels(part, n)
	if err != nil {
		return "", err
	}
	if len(rels.Rels) > 0 {
		if err := c.m.dst.putRels(n, rels); err != nil {
			return "", err
		}
	}
	return n, nil
}

// insertContents generates the contents slides and puts them first.
func (m *merger) insertContents(lines []types.ContentsLine, opts ContentsOptions) error {
	lpp := opts.LinesPerSlide
	if lpp < 1 {
		lpp = DefaultLinesPerSlide
	}
	layoutPart := m.layouts.prefer("blank", "titleOnly", "obj")
	if layoutPart == "" {
		return errors.New("base presentation has no slide layouts")
	}

	refs := make([]slideRef, 0, contents.SectionLength(len(lines), lpp))
	for i, chunk := range contents.Chunk(lines, lpp) {
		title := opts.Title
		if i > 0 {
			title = opts.ContinuedTitle
		}
		texts := make([]string, len(chunk))
		for j, l := range chunk {
			texts[j] = contents.FormatLine(i*lpp+j, l, opts.Labels)
		}

		part := m.dst.nextSlidePart()
		rels := &relationships{Rels: []relationship{{
			ID:     "rId1",
			Type:   relTypeBase + kindSlideLayout,
			Target: relativeTarget(part, layoutPart),
		}}}
		ref, err := m.addSlide(part, contentsSlideXML(title, texts, opts.Font, m.pres.width, m.pres.height), rels)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	m.slides = append(refs, m.slides...)
	return nil
}

// finish writes the edited presentation, relationships and content types
// back into the base package.
func (m *merger) finish() error {
	data, err := setSlideList(m.dst.get(m.pres.part), m.slides)
	if err != nil {
		return err
	}
	m.dst.put(m.pres.part, data)

	if err := m.dst.putRels(m.pres.part, m.presRels); err != nil {
		return err
	}
	if err := m.dst.putContentTypes(m.ct); err != nil {
		return err
	}

	const appPart = "docProps/app.xml"
	if app := m.dst.get(appPart); app != nil {
		count := []byte("<Slides>" + strconv.Itoa(len(m.slides)) + "</Slides>")
		m.dst.put(appPart, appSlidesRe.ReplaceAllLiteral(app, count))
	}
	return nil
}
