package state

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/justyntemme/ladderfilter/pkg/framework/param"
)

var (
	// ErrInvalidBlob is returned for absent, truncated or malformed state.
	ErrInvalidBlob = errors.New("invalid state blob")
	// ErrWrongRootTag is returned when a well-formed document belongs to
	// something else.
	ErrWrongRootTag = errors.New("unexpected state root tag")
)

// Kind selects how a field is written as an attribute.
type Kind int

const (
	// Float fields are written as decimal numbers
	Float Kind = iota
	// Int fields are written as whole numbers
	Int
)

// Field maps one parameter to an attribute of the state document.
type Field struct {
	Key     string
	ParamID uint32
	Kind    Kind
	// Fallback is applied when the attribute is missing on load.
	Fallback float64
}

// Manager handles plugin state saving and loading.
//
// State is a single XML element named after the root tag, carrying one
// attribute per field. Save and Load wrap it in the binary blob format.
type Manager struct {
	root     string
	registry *param.Registry
	fields   []Field
}

// NewManager creates a new state manager
func NewManager(root string, registry *param.Registry, fields ...Field) *Manager {
	return &Manager{
		root:     root,
		registry: registry,
		fields:   fields,
	}
}

// Serialize renders the current parameter values as an XML document.
func (m *Manager) Serialize() ([]byte, error) {
	start := xml.StartElement{Name: xml.Name{Local: m.root}}
	for _, f := range m.fields {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: f.Key},
			Value: formatField(f.Kind, m.registry.Value(f.ParamID)),
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.EncodeToken(start); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Deserialize applies an XML document. Parameters are only written once the
// whole document has been validated; on error nothing changes. An attribute
// that does not start with a number reads as 0.
func (m *Manager) Deserialize(doc []byte) error {
	root, err := parseRoot(doc)
	if err != nil {
		return err
	}
	if root.Name.Local != m.root {
		return fmt.Errorf("%w: %q", ErrWrongRootTag, root.Name.Local)
	}

	attrs := make(map[string]string, len(root.Attr))
	for _, a := range root.Attr {
		attrs[a.Name.Local] = a.Value
	}

	values := make([]float64, len(m.fields))
	for i, f := range m.fields {
		raw, ok := attrs[f.Key]
		if !ok {
			values[i] = f.Fallback
			continue
		}
		values[i] = parseField(f.Kind, raw)
	}

	for i, f := range m.fields {
		m.registry.Set(f.ParamID, values[i])
	}
	return nil
}

// Blob returns the current state in binary blob form.
func (m *Manager) Blob() ([]byte, error) {
	doc, err := m.Serialize()
	if err != nil {
		return nil, err
	}
	return Wrap(doc), nil
}

// Restore applies a binary blob.
func (m *Manager) Restore(blob []byte) error {
	doc, err := Unwrap(blob)
	if err != nil {
		return err
	}
	return m.Deserialize(doc)
}

// Save writes the plugin state to a writer
func (m *Manager) Save(w io.Writer) error {
	blob, err := m.Blob()
	if err != nil {
		return err
	}
	if _, err := w.Write(blob); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Load reads the plugin state from a reader
func (m *Manager) Load(r io.Reader) error {
	blob, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}
	return m.Restore(blob)
}

// parseRoot returns the first element of a well-formed document.
func parseRoot(doc []byte) (xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))

	var root xml.StartElement
	found := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("%w: %v", ErrInvalidBlob, err)
		}
		if se, ok := tok.(xml.StartElement); ok && !found {
			root = se.Copy()
			found = true
		}
	}

	if !found {
		return xml.StartElement{}, fmt.Errorf("%w: no root element", ErrInvalidBlob)
	}
	return root, nil
}

func formatField(kind Kind, v float64) string {
	if kind == Int {
		return strconv.Itoa(int(math.Round(v)))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parseField reads the leading number of an attribute. Trailing text is
// ignored and an attribute without one reads as 0. Int fields stop at the
// decimal point.
func parseField(kind Kind, raw string) float64 {
	raw = strings.TrimSpace(raw)
	end := numberPrefix(raw, kind == Float)
	v, err := strconv.ParseFloat(raw[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// numberPrefix returns the length of the decimal number at the start of s.
func numberPrefix(s string, fraction bool) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if fraction && i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if fraction && i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
