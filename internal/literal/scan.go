package literal

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type tokenKind uint8

const (
	codeByte tokenKind = iota
	stringLit
)

// visitor receives every byte outside string literals and comments as a
// codeByte token (start == end), and every string literal as a single
// stringLit token spanning its opening and closing quote (inclusive).
type visitor func(kind tokenKind, start, end int) bool

// walk scans src from offset `from`. Comments are skipped silently.
// A string literal or block comment that runs past the end of src is
// reported as ErrMalformed.
func walk(src string, from int, visit visitor) error {
	for i := from; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			end, err := skipString(src, i)
			if err != nil {
				return err
			}
			if !visit(stringLit, i, end) {
				return nil
			}
			i = end
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return nil
			}
			i += nl - 1
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return errors.Wrapf(ErrMalformed, "unterminated comment at offset %d", i)
			}
			i += 2 + end + 1
		default:
			if !visit(codeByte, i, i) {
				return nil
			}
		}
	}

	return nil
}

// skipString returns the offset of the quote closing the literal opened at
// src[open]. Only a matching, non-escaped quote closes it; a backslash always
// consumes the byte after it.
func skipString(src string, open int) (int, error) {
	q := src[open]
	for j := open + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return -1, errors.Wrapf(ErrMalformed, "line break inside string opened at offset %d", open)
		case q:
			return j, nil
		}
	}

	return -1, errors.Wrapf(ErrMalformed, "unterminated string opened at offset %d", open)
}

func closerOf(c byte) byte {
	if c == '[' {
		return ']'
	}
	return '}'
}

// matchClose returns the offset of the delimiter balancing the `{` or `[`
// at src[open].
func matchClose(src string, open int) (int, error) {
	depth := 0
	closeAt := -1
	err := walk(src, open, func(kind tokenKind, start, _ int) bool {
		if kind != codeByte {
			return true
		}
		switch src[start] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				closeAt = start
				return false
			}
		}
		return true
	})
	if err != nil {
		return -1, err
	}

	if closeAt < 0 {
		return -1, errors.Wrapf(ErrMalformed, "no closing %q for %q at offset %d", closerOf(src[open]), src[open], open)
	}

	if src[closeAt] != closerOf(src[open]) {
		return -1, errors.Wrapf(
			ErrMalformed,
			"%q at offset %d does not close %q at offset %d",
			src[closeAt], closeAt, src[open], open,
		)
	}

	return closeAt, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// skipBlank moves past whitespace and comments, never beyond limit.
func skipBlank(src string, i, limit int) int {
	for i < limit {
		switch {
		case isSpace(src[i]):
			i++
		case src[i] == '/' && i+1 < limit && src[i+1] == '/':
			nl := strings.IndexByte(src[i:limit], '\n')
			if nl < 0 {
				return limit
			}
			i += nl + 1
		case src[i] == '/' && i+1 < limit && src[i+1] == '*':
			end := strings.Index(src[i+2:limit], "*/")
			if end < 0 {
				return limit
			}
			i += 2 + end + 2
		default:
			return i
		}
	}

	return limit
}

// unquote decodes a quoted literal including its quotes.
func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}

	body := lit[1 : len(lit)-1]
	if strings.IndexByte(body, '\\') < 0 {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}

		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			if i+4 < len(body) {
				if r, err := strconv.ParseUint(body[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			b.WriteByte('u')
		default:
			b.WriteByte(body[i])
		}
	}

	return b.String()
}

// quote renders s as a literal delimited by q.
func quote(s string, q byte) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == q || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte("0123456789abcdef"[c>>4])
			b.WriteByte("0123456789abcdef"[c&0xf])
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)

	return b.String()
}
