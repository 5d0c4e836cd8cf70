package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS command bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Alignment is an ESC a argument
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// FontSize is a GS ! argument
type FontSize byte

const (
	FontNormal FontSize = 0x00
	FontDouble FontSize = 0x11
	FontWide   FontSize = 0x10
	FontTall   FontSize = 0x01
)

// Paper widths in characters
const (
	Width58mm = 32
	Width80mm = 48
)

// Document builds an ESC/POS byte stream. Text helpers assume a fixed
// character width; lines longer than the width are wrapped.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument creates an initialized document for the given character width
func NewDocument(width int) *Document {
	if width <= 0 {
		width = Width58mm
	}
	d := &Document{width: width}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width returns the character width of the document
func (d *Document) Width() int {
	return d.width
}

// Align sets the alignment for the following lines
func (d *Document) Align(a Alignment) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(a)})
	return d
}

// Bold toggles emphasized text
func (d *Document) Bold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// Size sets the character size
func (d *Document) Size(s FontSize) *Document {
	d.buf.Write([]byte{GS, '!', byte(s)})
	return d
}

// Line writes s, wrapped to the document width
func (d *Document) Line(s string) *Document {
	for _, l := range wrap(s, d.width) {
		d.buf.WriteString(l)
		d.buf.WriteByte(LF)
	}
	return d
}

// Linef writes a formatted line
func (d *Document) Linef(format string, args ...any) *Document {
	return d.Line(fmt.Sprintf(format, args...))
}

// Rule writes a full-width line of c
func (d *Document) Rule(c byte) *Document {
	d.buf.WriteString(strings.Repeat(string(c), d.width))
	d.buf.WriteByte(LF)
	return d
}

// Pair writes key on the left and value on the right of one line
func (d *Document) Pair(key, value string) *Document {
	d.buf.WriteString(justify(key, value, d.width))
	d.buf.WriteByte(LF)
	return d
}

// Item writes "<qty>x <name>" with the total right-aligned. Names that do not
// fit are continued on indented lines.
func (d *Document) Item(qty int, name, total string) *Document {
	prefix := fmt.Sprintf("%dx ", qty)
	room := d.width - len(prefix) - len(total) - 1
	if room < 1 {
		room = 1
	}
	parts := wrap(name, room)
	d.buf.WriteString(justify(prefix+parts[0], total, d.width))
	d.buf.WriteByte(LF)
	indent := strings.Repeat(" ", len(prefix))
	for _, p := range parts[1:] {
		d.buf.WriteString(indent + p)
		d.buf.WriteByte(LF)
	}
	return d
}

// Feed writes n empty lines
func (d *Document) Feed(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// Cut cuts the paper
func (d *Document) Cut(partial bool) *Document {
	var mode byte
	if partial {
		mode = 1
	}
	d.buf.Write([]byte{GS, 'V', mode})
	return d
}

// Bytes returns the accumulated stream
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func justify(left, right string, width int) string {
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func wrap(s string, width int) []string {
	if len(s) <= width {
		return []string{s}
	}
	var out []string
	line := ""
	for _, word := range strings.Fields(s) {
		for len(word) > width {
			if line != "" {
				out = append(out, line)
				line = ""
			}
			out = append(out, word[:width])
			word = word[width:]
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			out = append(out, line)
			line = word
		}
	}
	if line != "" || len(out) == 0 {
		out = append(out, line)
	}
	return out
}
