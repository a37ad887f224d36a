package literal

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type OpKind uint8

const (
	BoolOp OpKind = iota
	StringOp
	GroupsOp
)

func (k OpKind) String() string {
	switch k {
	case BoolOp:
		return "bool"
	case StringOp:
		return "string"
	case GroupsOp:
		return "groups"
	default:
		return "unknown"
	}
}

// Op sets one field of a record. A required op aborts the whole batch when
// its record cannot be found; an optional one is skipped.
type Op struct {
	Field    string
	Kind     OpKind
	Bool     bool
	Str      string
	Groups   []Bucket
	Required bool
}

func Bool(field string, v bool) Op {
	return Op{Field: field, Kind: BoolOp, Bool: v}
}

func String(field, v string) Op {
	return Op{Field: field, Kind: StringOp, Str: v}
}

func Groups(field string, buckets ...Bucket) Op {
	return Op{Field: field, Kind: GroupsOp, Groups: buckets}
}

// Require marks the op as required.
func (o Op) Require() Op {
	o.Required = true
	return o
}

func (o Op) apply(body string) (string, error) {
	switch o.Kind {
	case BoolOp:
		return SetBool(body, o.Field, o.Bool)
	case StringOp:
		return SetString(body, o.Field, o.Str)
	case GroupsOp:
		return SetGroups(body, o.Field, o.Groups)
	default:
		return "", errors.Errorf("unknown op kind %d", o.Kind)
	}
}

// Patch is the list of edits for the record stored under Key.
type Patch struct {
	Key string
	Ops []Op
}

type Skip struct {
	Key   string `json:"slug"`
	Field string `json:"field"`
}

type Report struct {
	Applied int    `json:"applied"`
	Skipped []Skip `json:"skipped,omitempty"`
}

type Options struct {
	Marker string
	Logger *zap.Logger
}

func (o Options) marker() string {
	if o.Marker == "" {
		return DefaultMarker
	}
	return o.Marker
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ApplyBatch applies patches to doc in order. Within a patch boolean ops run
// first, then string ops, then grouped ops. Every op locates its record
// afresh, so earlier edits never leave later offsets stale. The result is
// tidied and validated; on any error doc is left as it was and an empty
// string is returned.
func ApplyBatch(doc string, patches []Patch, opts Options) (string, Report, error) {
	var report Report
	lg := opts.logger()

	for _, p := range patches {
		if p.Key == "" {
			lg.Debug("skipping patch without key")
			continue
		}

		ops := make([]Op, len(p.Ops))
		copy(ops, p.Ops)
		sort.SliceStable(ops, func(i, j int) bool { return ops[i].Kind < ops[j].Kind })

		for _, op := range ops {
			span, err := Locate(doc, opts.marker(), p.Key)
			if errors.Is(err, ErrNotFound) && !op.Required {
				lg.Warn("record not found, skipping field",
					zap.String("slug", p.Key),
					zap.String("field", op.Field),
				)
				report.Skipped = append(report.Skipped, Skip{Key: p.Key, Field: op.Field})
				continue
			}
			if err != nil {
				return "", report, errors.Wrapf(err, "could not set %s on %q", op.Field, p.Key)
			}

			body, err := op.apply(span.Body(doc))
			if err != nil {
				return "", report, errors.Wrapf(err, "could not set %s on %q", op.Field, p.Key)
			}

			doc = Splice(doc, span, body)
			report.Applied++
		}
	}

	doc = Tidy(doc)
	if err := Validate(doc, opts.marker()); err != nil {
		return "", report, err
	}

	return doc, report, nil
}
