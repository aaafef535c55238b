// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decktest writes small synthetic .pptx packages for tests.
package decktest

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	relNS      = "http://schemas.openxmlformats.org/package/2006/relationships"
	relTypeNS  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	slideCT    = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	layoutCT   = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	presMainCT = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
)

// Layout is a slide layout in a synthetic deck.
type Layout struct {
	Name string
	Type string
}

// DefaultLayouts are used when Deck.Layouts is nil.
var DefaultLayouts = []Layout{
	{Name: "Title Slide", Type: "title"},
	{Name: "Title and Content", Type: "obj"},
	{Name: "Blank", Type: "blank"},
}

// Deck describes a minimal presentation package.
type Deck struct {
	Slides      []string // text on each slide
	Layouts     []Layout
	SlideLayout []int // 1-based layout per slide, default 1
	WithImage   bool
	WithNotes   bool
}

func rel(id, kind, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="%s%s" Target="%s"/>`, id, relTypeNS, kind, target)
}

// Write stores the deck at file.
func (d Deck) Write(t testing.TB, file string) {
	t.Helper()
	layouts := d.Layouts
	if layouts == nil {
		layouts = DefaultLayouts
	}

	parts := map[string]string{}
	var overrides strings.Builder
	fmt.Fprintf(&overrides, `<Override PartName="/ppt/presentation.xml" ContentType="%s"/>`, presMainCT)

	parts["_rels/.rels"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="` + relNS + `">` +
		rel("rId1", "officeDocument", "ppt/presentation.xml") +
		rel("rId2", "extended-properties", "docProps/app.xml") +
		`</Relationships>`
	parts["docProps/app.xml"] = fmt.Sprintf(`<?xml version="1.0"?><Properties><Slides>%d</Slides></Properties>`, len(d.Slides))

	for i, l := range layouts {
		name := fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1)
		parts[name] = fmt.Sprintf(`<?xml version="1.0"?><p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" type="%s"><p:cSld name="%s"/></p:sldLayout>`, l.Type, l.Name)
		fmt.Fprintf(&overrides, `<Override PartName="/%s" ContentType="%s"/>`, name, layoutCT)
	}

	var presRels, sldIds strings.Builder
	presRels.WriteString(`<Relationships xmlns="` + relNS + `">`)
	presRels.WriteString(rel("rId1", "slideMaster", "slideMasters/slideMaster1.xml"))
	for i, text := range d.Slides {
		n := i + 1
		slide := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		parts[slide] = fmt.Sprintf(`<?xml version="1.0"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><a:t>%s</a:t></p:spTree></p:cSld></p:sld>`, text)
		fmt.Fprintf(&overrides, `<Override PartName="/%s" ContentType="%s"/>`, slide, slideCT)

		layout := 1
		if i < len(d.SlideLayout) {
			layout = d.SlideLayout[i]
		}
		var rels strings.Builder
		rels.WriteString(`<Relationships xmlns="` + relNS + `">`)
		rels.WriteString(rel("rId1", "slideLayout", fmt.Sprintf("../slideLayouts/slideLayout%d.xml", layout)))
		if d.WithImage {
			rels.WriteString(rel("rId2", "image", "../media/image1.png"))
		}
		if d.WithNotes {
			rels.WriteString(rel("rId3", "notesSlide", fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)))
			parts[fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n)] = `<?xml version="1.0"?><p:notes/>`
		}
		fmt.Fprintf(&rels, `<Relationship Id="rId4" Type="%shyperlink" Target="https://example.com" TargetMode="External"/>`, relTypeNS)
		rels.WriteString(`</Relationships>`)
		parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)] = rels.String()

		presRels.WriteString(rel(fmt.Sprintf("rId%d", n+1), "slide", fmt.Sprintf("slides/slide%d.xml", n)))
		fmt.Fprintf(&sldIds, `<p:sldId id="%d" r:id="rId%d"/>`, 255+n, n+1)
	}
	presRels.WriteString(`</Relationships>`)
	parts["ppt/_rels/presentation.xml.rels"] = presRels.String()

	list := ""
	if len(d.Slides) > 0 {
		list = `<p:sldIdLst>` + sldIds.String() + `</p:sldIdLst>`
	}
	parts["ppt/presentation.xml"] = `<?xml version="1.0"?><p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` + list +
		`<p:sldSz cx="9144000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`

	if d.WithImage {
		parts["ppt/media/image1.png"] = "\x89PNG fake " + filepath.Base(file)
	}

	parts["[Content_Types].xml"] = `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		overrides.String() + `</Types>`

	f, err := os.Create(file)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}
