package literal

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Validate checks the structure of the whole document: balanced braces and
// brackets outside strings and comments, terminated strings and comments,
// the export marker, and unique record keys. All problems found are
// reported together, wrapped in ErrInvalid.
func Validate(doc, marker string) error {
	var result *multierror.Error

	var braces, brackets int
	scanErr := walk(doc, 0, func(kind tokenKind, start, _ int) bool {
		if kind != codeByte {
			return true
		}
		switch doc[start] {
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			brackets++
		case ']':
			brackets--
		}
		return true
	})

	if scanErr != nil {
		result = multierror.Append(result, scanErr)
	} else {
		if braces != 0 {
			result = multierror.Append(result, errors.Errorf("unbalanced braces (%+d)", braces))
		}
		if brackets != 0 {
			result = multierror.Append(result, errors.Errorf("unbalanced brackets (%+d)", brackets))
		}
	}

	if indexInCode(doc, marker) < 0 {
		result = multierror.Append(result, errors.Errorf("missing export marker %q", marker))
	} else if scanErr == nil && braces == 0 && brackets == 0 {
		spans, err := Entries(doc, marker)
		if err != nil {
			result = multierror.Append(result, err)
		}

		seen := make(map[string]struct{}, len(spans))
		for _, s := range spans {
			if _, ok := seen[s.Key]; ok {
				result = multierror.Append(result, errors.Errorf("duplicate record key %q", s.Key))
				continue
			}
			seen[s.Key] = struct{}{}
		}
	}

	if result == nil {
		return nil
	}

	result.ErrorFormat = joinErrors

	return errors.Wrap(ErrInvalid, result.Error())
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
