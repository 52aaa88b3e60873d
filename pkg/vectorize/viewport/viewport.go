// Package viewport fits a traced SVG document to the pixel dimensions of its source image.
package viewport

import (
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint
)

var (
	ErrNoRootElement   = errors.New("svg root element not found")
	ErrInvalidViewport = errors.New("viewport dimensions must be positive")
)

const (
	// OriginTolerance is how far from the origin a background rectangle may start.
	OriginTolerance = 1.0
	// CoverageRatio is the share of the canvas a background rectangle covers in both dimensions.
	CoverageRatio = 0.98
)

// rootAttrs are replaced on the root element.
var rootAttrs = map[string]bool{
	"viewBox":             true,
	"width":               true,
	"height":              true,
	"preserveAspectRatio": true,
	"overflow":            true,
}

// nonShapes are top-level elements that draw nothing.
var nonShapes = map[string]bool{
	"defs":     true,
	"title":    true,
	"desc":     true,
	"metadata": true,
	"style":    true,
	"script":   true,
}

// Option tunes Normalize.
type Option func(o *options)

type options struct {
	keepBackground bool
}

// KeepBackground leaves a full-canvas background rectangle in place.
func KeepBackground() Option {
	return func(o *options) {
		o.keepBackground = true
	}
}

type span struct {
	start, end int64
}

type child struct {
	name  string
	attrs []xml.Attr
	span  span
}

type document struct {
	root        xml.StartElement
	rootSpan    span
	selfClosing bool
	children    []child
}

// Normalize sets the root viewBox, width and height of svg to the given pixel dimensions, centres
// the drawing with preserveAspectRatio="xMidYMid meet" and lets it overflow. When the document has
// more than one top-level shape, the first full-canvas opaque background rectangle is removed
// unless KeepBackground is given.
func Normalize(svg string, width, height int, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if width <= 0 || height <= 0 {
		return "", errors.Wrapf(ErrInvalidViewport, "%dx%d", width, height)
	}

	doc, err := parse(svg)
	if err != nil {
		return "", err
	}

	var remove *span
	if !o.keepBackground && doc.shapeCount() > 1 {
		for i := range doc.children {
			if isBackground(doc.children[i], float64(width), float64(height)) {
				remove = &doc.children[i].span

				break
			}
		}
	}

	var sb strings.Builder
	sb.Grow(len(svg) + 128)
	sb.WriteString(svg[:doc.rootSpan.start])
	writeRoot(&sb, doc.root, width, height, doc.selfClosing)
	if remove == nil {
		sb.WriteString(svg[doc.rootSpan.end:])
	} else {
		sb.WriteString(svg[doc.rootSpan.end:remove.start])
		sb.WriteString(svg[remove.end:])
	}

	return sb.String(), nil
}

func parse(svg string) (*document, error) {
	dec := xml.NewDecoder(strings.NewReader(svg))
	dec.Strict = false

	doc := &document{}
	depth := 0
	found := false
	open := -1

	for {
		offset := dec.InputOffset()
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse svg")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case depth == 0 && !found:
				if t.Name.Local != "svg" {
					return nil, errors.Wrapf(ErrNoRootElement, "found <%s>", t.Name.Local)
				}
				found = true
				doc.root = t.Copy()
				doc.rootSpan = span{start: offset, end: dec.InputOffset()}
				doc.selfClosing = strings.HasSuffix(svg[:doc.rootSpan.end], "/>")
			case depth == 1:
				doc.children = append(doc.children, child{
					name:  t.Name.Local,
					attrs: t.Copy().Attr,
					span:  span{start: offset},
				})
				open = len(doc.children) - 1
			}
			depth++
		case xml.EndElement:
			depth--
			if depth == 1 && open >= 0 {
				doc.children[open].span.end = dec.InputOffset()
				open = -1
			}
			if depth == 0 && found {
				return doc, nil
			}
		}
	}

	if !found {
		return nil, ErrNoRootElement
	}

	return doc, nil
}

func (d *document) shapeCount() int {
	n := 0
	for _, c := range d.children {
		if !nonShapes[c.name] {
			n++
		}
	}

	return n
}

func writeRoot(sb *strings.Builder, root xml.StartElement, width, height int, selfClosing bool) {
	w := strconv.Itoa(width)
	h := strconv.Itoa(height)

	sb.WriteByte('<')
	sb.WriteString(qualified(root.Name))
	for _, attr := range root.Attr {
		if attr.Name.Space == "" && rootAttrs[attr.Name.Local] {
			continue
		}
		writeAttr(sb, qualified(attr.Name), attr.Value)
	}
	writeAttr(sb, "viewBox", "0 0 "+w+" "+h)
	writeAttr(sb, "width", w)
	writeAttr(sb, "height", h)
	writeAttr(sb, "preserveAspectRatio", "xMidYMid meet")
	writeAttr(sb, "overflow", "visible")
	if selfClosing {
		sb.WriteString("/>")

		return
	}
	sb.WriteByte('>')
}

func writeAttr(sb *strings.Builder, name, value string) {
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(`="`)
	_ = xml.EscapeText(sb, []byte(value))
	sb.WriteByte('"')
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}

	return name.Space + ":" + name.Local
}

func attrValue(attrs []xml.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name.Space == "" && attr.Name.Local == name {
			return strings.TrimSpace(attr.Value), true
		}
	}

	return "", false
}

// styleValue reads a property from an inline style attribute.
func styleValue(attrs []xml.Attr, prop string) (string, bool) {
	style, ok := attrValue(attrs, "style")
	if !ok {
		return "", false
	}
	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		if found && strings.TrimSpace(key) == prop {
			return strings.TrimSpace(value), true
		}
	}

	return "", false
}

// property returns the effective value of a presentation property, inline style first.
func property(attrs []xml.Attr, name string) (string, bool) {
	if v, ok := styleValue(attrs, name); ok {
		return v, true
	}

	return attrValue(attrs, name)
}

// length parses an SVG length. Percentages are resolved against ref.
func length(value string, ref float64) (float64, bool) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return 0, false
		}

		return v / 100 * ref, true
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

func isBackground(c child, width, height float64) bool {
	if c.name != "rect" {
		return false
	}

	for _, axis := range []struct {
		name string
		ref  float64
	}{{"x", width}, {"y", height}} {
		raw, ok := attrValue(c.attrs, axis.name)
		if !ok {
			continue
		}
		v, ok := length(raw, axis.ref)
		if !ok || math.Abs(v) > OriginTolerance {
			return false
		}
	}

	for _, dim := range []struct {
		name string
		ref  float64
	}{{"width", width}, {"height", height}} {
		raw, ok := attrValue(c.attrs, dim.name)
		if !ok {
			return false
		}
		v, ok := length(raw, dim.ref)
		if !ok || v < CoverageRatio*dim.ref {
			return false
		}
	}

	return opaqueFill(c.attrs)
}

func opaqueFill(attrs []xml.Attr) bool {
	if raw, ok := property(attrs, "fill-opacity"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return false
		}
	}

	fill, ok := property(attrs, "fill")
	if !ok {
		// SVG paints black by default
		return true
	}
	switch strings.ToLower(fill) {
	case "", "none", "transparent":
		return false
	}

	c, err := colors.Parse(strings.ToLower(fill))
	if err != nil {
		// named colours, paint servers
		return true
	}

	return c.ToRGBA().A > 0
}
