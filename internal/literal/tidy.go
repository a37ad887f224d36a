package literal

import (
	"strings"
)

// Tidy removes separator artifacts left behind by field edits: a comma
// directly following another comma or an opening delimiter. When such a
// comma is alone on its line the whole line goes. Strings and comments are
// never touched and a clean document comes back unchanged.
func Tidy(doc string) string {
	var (
		drop []int
		prev byte
	)

	err := walk(doc, 0, func(kind tokenKind, start, _ int) bool {
		if kind == stringLit {
			prev = '"'
			return true
		}

		c := doc[start]
		if isSpace(c) {
			return true
		}

		if c == ',' && (prev == ',' || prev == '{' || prev == '[') {
			drop = append(drop, start)
			return true
		}

		prev = c
		return true
	})
	if err != nil || len(drop) == 0 {
		return doc
	}

	var b strings.Builder
	b.Grow(len(doc))

	last := 0
	for _, at := range drop {
		from, to := at, at+1
		if ls, le, ok := soleOnLine(doc, at); ok {
			from, to = ls, le
		}

		if from < last {
			continue
		}

		b.WriteString(doc[last:from])
		last = to
	}
	b.WriteString(doc[last:])

	return b.String()
}

// soleOnLine reports whether the byte at pos is the only non-blank byte of
// its line, returning the line bounds including its trailing newline.
func soleOnLine(doc string, pos int) (int, int, bool) {
	ls := strings.LastIndexByte(doc[:pos], '\n') + 1
	if strings.TrimSpace(doc[ls:pos]) != "" {
		return 0, 0, false
	}

	le := len(doc)
	if nl := strings.IndexByte(doc[pos:], '\n'); nl >= 0 {
		le = pos + nl + 1
	}

	if strings.TrimSpace(doc[pos+1:le]) != "" {
		return 0, 0, false
	}

	return ls, le, true
}
