package convert

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"gridxml/internal/errors"
)

// Element is a node in the assembled XML tree. Element names are decided at
// runtime (they come from spreadsheet headers), so marshalling goes through
// a custom xml.Marshaler instead of struct tags.
type Element struct {
	Name     string
	Text     string
	Children []*Element
}

// AddChild appends a child element and returns it
func (e *Element) AddChild(name, text string) *Element {
	child := &Element{Name: name, Text: text}
	e.Children = append(e.Children, child)
	return child
}

// MarshalXML implements xml.Marshaler with the element's own name
func (e *Element) MarshalXML(enc *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if len(e.Children) > 0 {
		for _, child := range e.Children {
			if err := enc.Encode(child); err != nil {
				return err
			}
		}
	} else if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// AssembleOptions names the structural elements of the output document
type AssembleOptions struct {
	RootTag   string
	HeaderTag string
	BodyTag   string
	RowTag    string
}

// DefaultAssembleOptions returns the standard document structure
func DefaultAssembleOptions() AssembleOptions {
	return AssembleOptions{
		RootTag:   "root",
		HeaderTag: "header",
		BodyTag:   "body",
		RowTag:    "row",
	}
}

// Assemble builds the XML tree for the extracted table: one root, one header
// element iff headerFields is non-empty, and one body with a row element per
// record. Body field names go through Sanitize; header field names only get
// whitespace replaced with underscores. That asymmetry is deliberate —
// callers depend on verbatim header tag names.
func Assemble(data *TableData, headerFields []HeaderField, opts AssembleOptions) (*Element, error) {
	root := &Element{Name: opts.RootTag}

	if len(headerFields) > 0 {
		header := root.AddChild(opts.HeaderTag, "")
		for _, field := range headerFields {
			value, err := stringifyHeaderValue(field.Value)
			if err != nil {
				return nil, errors.InvalidHeaderField(field.Name)
			}
			header.AddChild(headerFieldTag(field.Name), value)
		}
	}

	body := root.AddChild(opts.BodyTag, "")
	for _, record := range data.Rows {
		row := body.AddChild(opts.RowTag, "")
		for _, column := range data.Columns {
			row.AddChild(Sanitize(column), record[column])
		}
	}

	return root, nil
}

// SerializeDocument renders the tree as an indented UTF-8 document with an
// XML 1.0 declaration. Element nesting, names, and text are the contract;
// exact byte formatting is not.
func SerializeDocument(root *Element) ([]byte, error) {
	body, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize XML document")
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// headerFieldTag replaces each whitespace character with an underscore.
// No further sanitization here, unlike body fields.
func headerFieldTag(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, name)
}

func stringifyHeaderValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("unsupported header value type %T", value)
}
