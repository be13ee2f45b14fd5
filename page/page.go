// Package page binds the variant selector to HTML documents.
package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"rightimage/variant"
)

const (
	// BaseImageAttr holds the source filename before substitution. The HTML
	// parser lowercases attribute names, so markup may spell it data-baseImage.
	BaseImageAttr = "data-baseimage"

	// ResultsID is the element that receives debug reports.
	ResultsID = "results"

	// DefaultQuery selects the elements rewritten when no query is configured.
	DefaultQuery = "img"
)

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Load parses an HTML document.
func Load(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Element adapts a single matched node to variant.Element.
type Element struct {
	sel *goquery.Selection
}

// BaseImage returns the data-baseimage attribute.
func (e Element) BaseImage() (string, bool) {
	return e.sel.Attr(BaseImageAttr)
}

// SetSource replaces the src attribute.
func (e Element) SetSource(src string) {
	e.sel.SetAttr("src", src)
}

// Source returns the current src attribute.
func (e Element) Source() (string, bool) {
	return e.sel.Attr("src")
}

// Elements returns one element per node matched by query, in document order.
func (d *Document) Elements(query string) []variant.Element {
	if query == "" {
		query = DefaultQuery
	}
	var out []variant.Element
	d.doc.Find(query).Each(func(_ int, s *goquery.Selection) {
		out = append(out, Element{sel: s})
	})
	return out
}

// Apply rewrites every element matched by query with sel's decision.
func (d *Document) Apply(sel *variant.Selector, query string) variant.Batch {
	return sel.Apply(d.Elements(query))
}

// ResultsReporter appends each report to the #results element, one line per
// field. Documents without that element silently drop reports.
func (d *Document) ResultsReporter() variant.Reporter {
	return variant.ReporterFunc(func(r variant.Report) {
		lines := r.Lines()
		escaped := make([]string, len(lines))
		for i, l := range lines {
			escaped[i] = html.EscapeString(l)
		}
		d.doc.Find("#" + ResultsID).AppendHtml(strings.Join(escaped, "<br />") + "<hr />")
	})
}

// Render writes the document back out as HTML.
func (d *Document) Render(w io.Writer) error {
	for _, n := range d.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("failed to render HTML: %w", err)
		}
	}
	return nil
}

// String renders the document, returning an empty string on failure.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}
