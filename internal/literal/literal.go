// Package literal edits records stored as an exported object literal in a
// source file, such as
//
//	export const rooferData: Record<string, RooferData> = {
//	  'acme-roofing': {
//	    name: "Acme Roofing",
//	    isHidden: false,
//	  },
//	};
//
// Records are located by key and edited field by field. Everything outside
// the edited value tokens is preserved byte for byte.
package literal

import (
	"github.com/pkg/errors"
)

// DefaultMarker is the declaration that introduces the record mapping.
const DefaultMarker = "export const rooferData"

var ErrNotFound = errors.New("record not found")
var ErrMalformed = errors.New("malformed structure")
var ErrInvalid = errors.New("document failed validation")

// Span locates one record inside a document. Start and End delimit the
// record body, the text between its opening and closing braces.
type Span struct {
	Key      string
	KeyStart int
	Start    int
	End      int
}

func (s Span) Body(doc string) string {
	return doc[s.Start:s.End]
}

// Splice replaces the body covered by s with body.
func Splice(doc string, s Span, body string) string {
	return doc[:s.Start] + body + doc[s.End:]
}

// Locate finds the record stored under key among the top-level members of
// the mapping declared after marker. Keys of nested objects and of objects
// outside the mapping never match.
func Locate(doc, marker, key string) (Span, error) {
	spans, err := Entries(doc, marker)
	if err != nil {
		return Span{}, err
	}

	for _, s := range spans {
		if s.Key == key {
			return s, nil
		}
	}

	return Span{}, errors.Wrapf(ErrNotFound, "key %q", key)
}

// mapping returns the offsets of the braces of the object literal declared
// after marker.
func mapping(doc, marker string) (int, int, error) {
	at := indexInCode(doc, marker)
	if at < 0 {
		return -1, -1, errors.Wrapf(ErrInvalid, "missing export marker %q", marker)
	}

	open := -1
	err := walk(doc, at+len(marker), func(kind tokenKind, start, _ int) bool {
		if kind == codeByte && doc[start] == '{' {
			open = start
			return false
		}
		return true
	})
	if err != nil {
		return -1, -1, err
	}

	if open < 0 {
		return -1, -1, errors.Wrapf(ErrMalformed, "no object literal after %q", marker)
	}

	closeAt, err := matchClose(doc, open)
	if err != nil {
		return -1, -1, errors.Wrapf(err, "record mapping")
	}

	return open, closeAt, nil
}

func indexInCode(doc, needle string) int {
	at := -1
	_ = walk(doc, 0, func(kind tokenKind, start, _ int) bool {
		if kind == codeByte && doc[start] == needle[0] && len(doc)-start >= len(needle) && doc[start:start+len(needle)] == needle {
			at = start
			return false
		}
		return true
	})

	return at
}

// Entries lists the records of the mapping declared after marker in
// document order. Members whose value is not an object are ignored.
func Entries(doc, marker string) ([]Span, error) {
	open, closeAt, err := mapping(doc, marker)
	if err != nil {
		return nil, err
	}

	ms, err := members(doc, open+1, closeAt)
	if err != nil {
		return nil, errors.Wrap(err, "record mapping")
	}

	result := make([]Span, 0, len(ms))
	for _, m := range ms {
		if doc[m.valueStart] != '{' {
			continue
		}

		result = append(result, Span{
			Key:      m.key,
			KeyStart: m.keyStart,
			Start:    m.valueStart + 1,
			End:      m.valueEnd - 1,
		})
	}

	return result, nil
}
