package literal

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const defaultIndent = "    "

// member is one `key: value` pair of an object literal. Offsets are
// absolute within the scanned text; valueEnd is exclusive.
type member struct {
	key        string
	quoted     bool
	keyStart   int
	keyEnd     int
	valueStart int
	valueEnd   int
}

// members parses the comma separated pairs found between from and to,
// which must be the interior of an object literal.
func members(src string, from, to int) ([]member, error) {
	var result []member

	i := from
	for {
		i = skipBlank(src, i, to)
		if i >= to {
			return result, nil
		}

		if src[i] == ',' {
			i++
			continue
		}

		var m member
		m.keyStart = i
		switch {
		case src[i] == '"' || src[i] == '\'':
			end, err := skipString(src[:to], i)
			if err != nil {
				return nil, err
			}
			m.key = unquote(src[i : end+1])
			m.quoted = true
			m.keyEnd = end + 1
		case isIdentByte(src[i]):
			j := i
			for j < to && isIdentByte(src[j]) {
				j++
			}
			m.key = src[i:j]
			m.keyEnd = j
		default:
			return nil, errors.Wrapf(ErrMalformed, "unexpected %q at offset %d, expected a key", src[i], i)
		}

		colon := skipBlank(src, m.keyEnd, to)
		if colon >= to || src[colon] != ':' {
			return nil, errors.Wrapf(ErrMalformed, "key %q at offset %d is not followed by a colon", m.key, m.keyStart)
		}

		m.valueStart = skipBlank(src, colon+1, to)
		if m.valueStart >= to {
			return nil, errors.Wrapf(ErrMalformed, "key %q at offset %d has no value", m.key, m.keyStart)
		}

		end, err := valueEnd(src, m.valueStart, to)
		if err != nil {
			return nil, errors.Wrapf(err, "value of %q", m.key)
		}
		m.valueEnd = end

		result = append(result, m)
		i = end
	}
}

// valueEnd returns the offset just past the value starting at src[start]:
// the last token before a separator at the same nesting level.
func valueEnd(src string, start, to int) (int, error) {
	if src[start] == '{' || src[start] == '[' {
		closeAt, err := matchClose(src[:to], start)
		if err != nil {
			return -1, err
		}
		return closeAt + 1, nil
	}

	depth := 0
	last := start
	err := walk(src[:to], start, func(kind tokenKind, s, e int) bool {
		if kind == stringLit {
			last = e + 1
			return true
		}

		switch c := src[s]; {
		case c == ',' && depth == 0:
			return false
		case c == '{' || c == '[' || c == '(':
			depth++
		case c == '}' || c == ']' || c == ')':
			depth--
		case isSpace(c):
			return true
		}
		last = s + 1
		return true
	})
	if err != nil {
		return -1, err
	}

	return last, nil
}

// lookup finds the top-level field name in body, preferring the unquoted
// key form over the quoted one.
func lookup(body, name string) (member, bool, error) {
	ms, err := members(body, 0, len(body))
	if err != nil {
		return member{}, false, err
	}

	for _, quoted := range []bool{false, true} {
		for _, m := range ms {
			if m.key == name && m.quoted == quoted {
				return m, true, nil
			}
		}
	}

	return member{}, false, nil
}

// lineIndent returns the indentation of the line holding pos when pos is
// the first non-blank byte of that line.
func lineIndent(src string, pos int) string {
	j := pos
	for j > 0 && (src[j-1] == ' ' || src[j-1] == '\t') {
		j--
	}

	if j > 0 && src[j-1] == '\n' {
		return src[j:pos]
	}

	return defaultIndent
}

// lineBreak returns the line terminator used around pos, "\n" when src has
// none.
func lineBreak(src string, pos int) string {
	nl := strings.IndexByte(src[pos:], '\n')
	if nl >= 0 {
		nl += pos
	} else {
		nl = strings.LastIndexByte(src[:pos], '\n')
	}

	if nl > 0 && src[nl-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// lineEnd returns the offset of the line break closing the line that holds
// from, when only blanks and a line comment follow from on that line.
// Otherwise it returns from.
func lineEnd(src string, from int) int {
	i := from
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}

	if strings.HasPrefix(src[i:], "//") {
		nl := strings.IndexByte(src[i:], '\n')
		if nl < 0 {
			return len(src)
		}
		i += nl
		if src[i-1] == '\r' {
			i--
		}
		return i
	}

	if strings.HasPrefix(src[i:], "\r\n") || strings.HasPrefix(src[i:], "\n") {
		return i
	}

	return from
}

// layout is the formatting of the line a field is written next to.
type layout struct {
	indent string
	eol    string
	quoted bool
}

func layoutAt(body string, m member) layout {
	return layout{
		indent: lineIndent(body, m.keyStart),
		eol:    lineBreak(body, m.keyStart),
		quoted: m.quoted,
	}
}

// renderFunc produces a value literal for a field written with layout l.
type renderFunc func(l layout) string

func scalar(lit string) renderFunc {
	return func(layout) string { return lit }
}

func renderKey(name string, quoted bool) string {
	if quoted {
		return quote(name, '"')
	}
	return name
}

// insertField adds name after the isHidden anchor, or at the end of body
// when the record has no anchor.
func insertField(body, name string, render renderFunc) (string, error) {
	anchor, ok, err := lookup(body, "isHidden")
	if err != nil {
		return "", err
	}

	if ok {
		l := layoutAt(body, anchor)
		return appendAfter(body, anchor, l, renderKey(name, l.quoted)+": "+render(l)), nil
	}

	ms, err := members(body, 0, len(body))
	if err != nil {
		return "", err
	}

	if len(ms) == 0 {
		l := layout{indent: defaultIndent, eol: lineBreak(body, 0)}
		return l.eol + l.indent + renderKey(name, false) + ": " + render(l) + body, nil
	}

	lastMember := ms[len(ms)-1]
	l := layoutAt(body, lastMember)

	return appendAfter(body, lastMember, l, renderKey(name, l.quoted)+": "+render(l)), nil
}

// appendAfter writes field on a new line after the line holding m, past any
// trailing line comment. A comma already terminating m is kept and the new
// field gets one as well, so the record keeps its trailing-comma style.
func appendAfter(body string, m member, l layout, field string) string {
	comma := skipBlank(body, m.valueEnd, len(body))
	if comma < len(body) && body[comma] == ',' {
		at := lineEnd(body, comma+1)
		return body[:at] + l.eol + l.indent + field + "," + body[at:]
	}

	at := lineEnd(body, m.valueEnd)
	return body[:m.valueEnd] + "," + body[m.valueEnd:at] + l.eol + l.indent + field + body[at:]
}

func isEmptyValue(tok string) bool {
	return tok == "null" || tok == "undefined"
}

// SetBool sets `name: true|false` in a record body.
func SetBool(body, name string, value bool) (string, error) {
	m, ok, err := lookup(body, name)
	if err != nil {
		return "", err
	}

	lit := strconv.FormatBool(value)
	if !ok {
		return insertField(body, name, scalar(lit))
	}

	if tok := body[m.valueStart:m.valueEnd]; tok != "true" && tok != "false" && !isEmptyValue(tok) {
		return "", errors.Wrapf(ErrMalformed, "field %s holds %q, not a boolean", name, tok)
	}

	return body[:m.valueStart] + lit + body[m.valueEnd:], nil
}

// SetString sets `name: "value"` in a record body. The existing value may be
// single or double quoted; the new one is always written double quoted.
func SetString(body, name, value string) (string, error) {
	m, ok, err := lookup(body, name)
	if err != nil {
		return "", err
	}

	if !ok {
		return insertField(body, name, scalar(quote(value, '"')))
	}

	tok := body[m.valueStart:m.valueEnd]
	if isEmptyValue(tok) {
		return body[:m.valueStart] + quote(value, '"') + body[m.valueEnd:], nil
	}

	if q := tok[0]; q != '"' && q != '\'' {
		return "", errors.Wrapf(ErrMalformed, "field %s holds %q, not a string", name, tok)
	}

	if end, err := skipString(tok, 0); err != nil || end != len(tok)-1 {
		return "", errors.Wrapf(ErrMalformed, "field %s holds %q, not a single string", name, tok)
	}

	return body[:m.valueStart] + quote(value, '"') + body[m.valueEnd:], nil
}

// Bucket is one named list of tags inside a grouped field.
type Bucket struct {
	Name string
	Tags []string
}

func renderGroups(groups []Bucket) renderFunc {
	return func(l layout) string {
		q := byte('\'')
		if l.quoted {
			q = '"'
		}

		inner := l.indent + "  "
		var b strings.Builder
		b.WriteString("{")
		b.WriteString(l.eol)
		for i, g := range groups {
			b.WriteString(inner)
			b.WriteString(renderKey(g.Name, l.quoted))
			b.WriteString(": [")
			for j, t := range g.Tags {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(quote(t, q))
			}
			b.WriteString("]")
			if i < len(groups)-1 {
				b.WriteString(",")
			}
			b.WriteString(l.eol)
		}
		b.WriteString(l.indent)
		b.WriteString("}")

		return b.String()
	}
}

// SetGroups replaces the nested value of name with groups, written as a
// fixed block of one tag list per bucket. Empty buckets are kept.
func SetGroups(body, name string, groups []Bucket) (string, error) {
	m, ok, err := lookup(body, name)
	if err != nil {
		return "", err
	}

	render := renderGroups(groups)
	if !ok {
		return insertField(body, name, render)
	}

	if body[m.valueStart] != '{' && !isEmptyValue(body[m.valueStart:m.valueEnd]) {
		return "", errors.Wrapf(ErrMalformed, "field %s does not hold an object", name)
	}

	value := render(layoutAt(body, m))

	return body[:m.valueStart] + value + body[m.valueEnd:], nil
}
