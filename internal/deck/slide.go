// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Contents slide geometry in points.
const (
	slideMargin     = 72
	titleTop        = 72
	titleHeight     = 80
	titleSize       = 44
	bodyTop         = 180
	bodyBottomSpace = 70
	bodySize        = 24
	bodyLineSpacing = 28
)

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func runProps(size int, bold bool, font string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<a:rPr lang="en-US" sz="%d"`, size*100)
	if bold {
		b.WriteString(` b="1"`)
	}
	b.WriteString(` dirty="0">`)
	if font != "" {
		f := escape(font)
		fmt.Fprintf(&b, `<a:latin typeface="%s"/><a:ea typeface="%s"/><a:cs typeface="%s"/>`, f, f, f)
	}
	b.WriteString(`</a:rPr>`)
	return b.String()
}

func textBox(id int, name string, x, y, cx, cy int, paras string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`+
		`<p:txBody><a:bodyPr wrap="square" rtlCol="0"><a:noAutofit/></a:bodyPr><a:lstStyle/>%s</p:txBody></p:sp>`,
		id, name, x, y, cx, cy, paras)
}

// contentsSlideXML renders one contents slide with a title box and one
// paragraph per line. Sizes are in EMU.
func contentsSlideXML(title string, lines []string, font string, width, height int) []byte {
	boxWidth := width - 2*slideMargin*emuPerPt

	titlePara := `<a:p><a:r>` + runProps(titleSize, true, font) + `<a:t>` + escape(title) + `</a:t></a:r></a:p>`

	var body strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&body, `<a:p><a:pPr><a:lnSpc><a:spcPts val="%d"/></a:lnSpc></a:pPr><a:r>%s<a:t>%s</a:t></a:r></a:p>`,
			bodyLineSpacing*100, runProps(bodySize, false, font), escape(l))
	}
	if len(lines) == 0 {
		body.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
	}

	bodyHeight := max(height-(bodyTop+bodyBottomSpace)*emuPerPt, emuPerPt*bodyLineSpacing)

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)
	b.WriteString(textBox(2, "Contents Title",
		slideMargin*emuPerPt, titleTop*emuPerPt, boxWidth, titleHeight*emuPerPt, titlePara))
	b.WriteString(textBox(3, "Contents",
		slideMargin*emuPerPt, bodyTop*emuPerPt, boxWidth, bodyHeight, body.String()))
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return []byte(b.String())
}
