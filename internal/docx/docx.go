// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx writes minimal WordprocessingML (.docx) documents: paragraphs
// of styled runs with alignment and right-to-left direction, a single default
// font, and swappable page dimensions. It covers exactly the features the
// document compiler needs; it is not a general OOXML library.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// wordNS is the WordprocessingML main namespace.
const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// A4 page dimensions in twentieths of a point (twips).
const (
	pageWidthA4  = 11906
	pageHeightA4 = 16838
)

// Alignment is a paragraph justification value (w:jc).
type Alignment string

const (
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Document is an in-memory document assembled paragraph by paragraph and
// serialized once at the end.
type Document struct {
	paragraphs []*Paragraph
	font       string
	sizeHalf   int // half-points, per w:sz
	pageWidth  int
	pageHeight int
}

// New returns an empty A4 portrait document.
func New() *Document {
	return &Document{pageWidth: pageWidthA4, pageHeight: pageHeightA4}
}

// SwapPageDimensions exchanges page width and height. The compiler calls it
// once at the top so the page is treated as right-to-left oriented.
func (d *Document) SwapPageDimensions() {
	d.pageWidth, d.pageHeight = d.pageHeight, d.pageWidth
}

// SetDefaultFont applies one font and size (in points) to the whole document
// via the style part's document defaults.
func (d *Document) SetDefaultFont(name string, sizePt int) {
	d.font = name
	d.sizeHalf = sizePt * 2
}

// AddParagraph appends an empty paragraph and returns it for styling.
func (d *Document) AddParagraph() *Paragraph {
	p := &Paragraph{}
	d.paragraphs = append(d.paragraphs, p)
	return p
}

// Paragraph is one block of runs with optional alignment and direction.
type Paragraph struct {
	alignment Alignment
	rtl       bool
	runs      []*Run
}

// Align sets the paragraph justification.
func (p *Paragraph) Align(a Alignment) *Paragraph {
	p.alignment = a
	return p
}

// RTL marks the paragraph as right-to-left. Direction is independent of
// alignment: w:bidi flips the base direction, w:jc only places the text.
func (p *Paragraph) RTL() *Paragraph {
	p.rtl = true
	return p
}

// AddRun appends a text run and returns it for styling.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{text: text}
	p.runs = append(p.runs, r)
	return r
}

// Run is a span of text with uniform formatting.
type Run struct {
	text string
	bold bool
}

// Bold emphasizes the run.
func (r *Run) Bold() *Run {
	r.bold = true
	return r
}

// --- serialization ---

// The wire structs spell out prefixed element names so the marshaled XML
// carries the w: namespace the way Word expects. Field order inside
// xmlParaProps matters: w:bidi must precede w:jc.

type xmlDocument struct {
	XMLName xml.Name `xml:"w:document"`
	XMLNSW  string   `xml:"xmlns:w,attr"`
	Body    xmlBody  `xml:"w:body"`
}

type xmlBody struct {
	Paragraphs []xmlParagraph `xml:"w:p"`
	SectPr     xmlSectPr      `xml:"w:sectPr"`
}

type xmlParagraph struct {
	Props *xmlParaProps `xml:"w:pPr"`
	Runs  []xmlRun      `xml:"w:r"`
}

type xmlParaProps struct {
	Bidi *xmlEmpty `xml:"w:bidi"`
	Jc   *xmlVal   `xml:"w:jc"`
}

type xmlEmpty struct{}

type xmlVal struct {
	Val string `xml:"w:val,attr"`
}

type xmlRun struct {
	Props *xmlRunProps `xml:"w:rPr"`
	Text  xmlText      `xml:"w:t"`
}

type xmlRunProps struct {
	Bold *xmlEmpty `xml:"w:b"`
}

type xmlText struct {
	Space string `xml:"xml:space,attr"`
	Value string `xml:",chardata"`
}

type xmlSectPr struct {
	PgSz xmlPgSz `xml:"w:pgSz"`
}

type xmlPgSz struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

// documentXML marshals the body part.
func (d *Document) documentXML() ([]byte, error) {
	doc := xmlDocument{
		XMLNSW: wordNS,
		Body: xmlBody{
			SectPr: xmlSectPr{PgSz: xmlPgSz{W: d.pageWidth, H: d.pageHeight}},
		},
	}

	for _, p := range d.paragraphs {
		xp := xmlParagraph{}
		if p.rtl || p.alignment != "" {
			props := &xmlParaProps{}
			if p.rtl {
				props.Bidi = &xmlEmpty{}
			}
			if p.alignment != "" {
				props.Jc = &xmlVal{Val: string(p.alignment)}
			}
			xp.Props = props
		}
		for _, r := range p.runs {
			xr := xmlRun{Text: xmlText{Space: "preserve", Value: r.text}}
			if r.bold {
				xr.Props = &xmlRunProps{Bold: &xmlEmpty{}}
			}
			xp.Runs = append(xp.Runs, xr)
		}
		doc.Body.Paragraphs = append(doc.Body.Paragraphs, xp)
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling document body: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// stylesXML emits the style part with the document-default font and size.
func (d *Document) stylesXML() []byte {
	font := xmlEscape(d.font)
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, `<w:styles xmlns:w="%s">`, wordNS)
	buf.WriteString(`<w:docDefaults><w:rPrDefault><w:rPr>`)
	if font != "" {
		fmt.Fprintf(&buf, `<w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/>`, font, font, font)
	}
	if d.sizeHalf > 0 {
		fmt.Fprintf(&buf, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, d.sizeHalf, d.sizeHalf)
	}
	buf.WriteString(`</w:rPr></w:rPrDefault></w:docDefaults>`)
	buf.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	buf.WriteString(`</w:styles>`)
	return buf.Bytes()
}

// xmlEscape escapes a string for use in an attribute value.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/></Types>`

const packageRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

// WriteTo serializes the document as a zip package.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	body, err := d.documentXML()
	if err != nil {
		return 0, err
	}

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", body},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/styles.xml", d.stylesXML()},
	}

	var count countingWriter
	zw := zip.NewWriter(io.MultiWriter(w, &count))
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return count.n, fmt.Errorf("creating zip entry %s: %w", part.name, err)
		}
		if _, err := f.Write(part.data); err != nil {
			return count.n, fmt.Errorf("writing zip entry %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return count.n, fmt.Errorf("finalizing package: %w", err)
	}
	return count.n, nil
}

// SaveAs writes the document to path.
func (d *Document) SaveAs(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// countingWriter tracks bytes written for the io.WriterTo contract.
type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
