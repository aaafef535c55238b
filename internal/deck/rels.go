// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	relTypeBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	ctSlide = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
)

// Relationship kinds, compared by the last path element of the type URI so
// transitional and strict namespaces both match.
const (
	kindOfficeDocument = "officeDocument"
	kindSlide          = "slide"
	kindSlideLayout    = "slideLayout"
	kindNotesSlide     = "notesSlide"
	kindComments       = "comments"
)

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

func (r relationship) kind() string { return path.Base(r.Type) }

func (r relationship) external() bool { return r.TargetMode == "External" }

type relationships struct {
	XMLName xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

// relsPart returns the relationships part for part, e.g.
// ppt/slides/slide1.xml -> ppt/slides/_rels/slide1.xml.rels.
func relsPart(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// resolve turns a relationship target into a part name.
func resolve(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// relativeTarget returns the target that reaches part from source.
func relativeTarget(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(part, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var b strings.Builder
	for range from[i:] {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[i:], "/"))
	return b.String()
}

func (p *pkg) rels(part string) (*relationships, error) {
	data := p.get(relsPart(part))
	rs := &relationships{}
	if data == nil {
		return rs, nil
	}
	if err := xml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", relsPart(part), err)
	}
	return rs, nil
}

func (p *pkg) putRels(part string, rs *relationships) error {
	data, err := xml.Marshal(rs)
	if err != nil {
		return err
	}
	p.put(relsPart(part), append([]byte(xml.Header), data...))
	return nil
}

// nextRelID returns an rId not used in rs.
func (rs *relationships) nextRelID() string {
	highest := 0
	for _, r := range rs.Rels {
		if n, err := strconv.Atoi(strings.TrimPrefix(r.ID, "rId")); err == nil && n > highest {
			highest = n
		}
	}
	return "rId" + strconv.Itoa(highest+1)
}

func (rs *relationships) byID(id string) (relationship, bool) {
	for _, r := range rs.Rels {
		if r.ID == id {
			return r, true
		}
	}
	return relationship{}, false
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentTypes struct {
	XMLName   xml.Name     `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

func (p *pkg) contentTypes() (*contentTypes, error) {
	ct := &contentTypes{}
	if err := xml.Unmarshal(p.get(contentTypesPart), ct); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", contentTypesPart, err)
	}
	return ct, nil
}

func (p *pkg) putContentTypes(ct *contentTypes) error {
	data, err := xml.Marshal(ct)
	if err != nil {
		return err
	}
	p.put(contentTypesPart, append([]byte(xml.Header), data...))
	return nil
}

// lookup returns the content type of part: its override, or the default
// for its extension.
func (ct *contentTypes) lookup(part string) string {
	for _, o := range ct.Overrides {
		if strings.TrimPrefix(o.PartName, "/") == part {
			return o.ContentType
		}
	}
	ext := strings.TrimPrefix(path.Ext(part), ".")
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d.ContentType
		}
	}
	return ""
}

// register makes part resolve to contentType, adding an override unless the
// extension default already matches.
func (ct *contentTypes) register(part, contentType string) {
	if contentType == "" {
		return
	}
	ext := strings.TrimPrefix(path.Ext(part), ".")
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) && d.ContentType == contentType {
			return
		}
	}
	ct.Overrides = append(ct.Overrides, ctOverride{PartName: "/" + part, ContentType: contentType})
}
