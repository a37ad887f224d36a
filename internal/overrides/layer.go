package overrides

import (
	"context"
	"fmt"
	"sync"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Bitfisherllc/roofdb"
	"github.com/Bitfisherllc/roofdb/internal/data"
	"github.com/Bitfisherllc/roofdb/internal/literal"
	"github.com/Bitfisherllc/roofdb/options"
)

// Layer serves roofers from the data file with the stored overrides merged
// on top. Admin edits go to the override store; the data file is only read.
type Layer struct {
	base  *roofdb.DB
	store *Store
	log   *zap.Logger
	mu    sync.Mutex
}

func NewLayer(base *roofdb.DB, store *Store, log *zap.Logger) *Layer {
	if log == nil {
		log = zap.NewNop()
	}

	return &Layer{base: base, store: store, log: log}
}

// Merge returns a copy of r with every field set in o applied.
func Merge(r data.Roofer, o data.Update) (data.Roofer, error) {
	var merged data.Roofer
	if err := copier.CopyWithOption(&merged, &r, copier.Option{DeepCopy: true}); err != nil {
		return r, errors.Wrapf(err, "could not copy roofer %q", r.Slug)
	}

	if o.Category != nil {
		merged.Category = *o.Category
	}
	if o.IsPreferred != nil {
		merged.IsPreferred = *o.IsPreferred
	}
	if o.IsHidden != nil {
		merged.IsHidden = *o.IsHidden
	}
	if o.Phone != nil {
		merged.Phone = *o.Phone
	}
	if o.Email != nil {
		merged.Email = *o.Email
	}
	if o.WebsiteURL != nil {
		merged.WebsiteURL = *o.WebsiteURL
	}
	if o.GoogleBusinessURL != nil {
		merged.GoogleBusinessURL = *o.GoogleBusinessURL
	}
	if o.ServiceAreas != nil {
		merged.ServiceAreas = *o.ServiceAreas
	}

	return merged, nil
}

func (l *Layer) Roofers(ctx context.Context, opts *options.FindOptions) ([]data.Roofer, error) {
	rs, err := l.base.Roofers(ctx, options.Find().IncludeHidden().SetOrder(options.InFile))
	if err != nil {
		return nil, err
	}

	ovs, err := l.store.All(ctx)
	if err != nil {
		return nil, err
	}

	for i := range rs {
		o, ok := ovs[rs[i].Slug]
		if !ok {
			continue
		}

		if rs[i], err = Merge(rs[i], o); err != nil {
			return nil, err
		}
	}

	if opts == nil {
		opts = options.Find()
	}

	return opts.Filter(rs), nil
}

func (l *Layer) Roofer(ctx context.Context, slug string) (data.Roofer, error) {
	r, err := l.base.Roofer(ctx, slug)
	if err != nil {
		return r, err
	}

	o, ok, err := l.store.Get(ctx, slug)
	if err != nil || !ok {
		return r, err
	}

	return Merge(r, o)
}

// ApplyUpdates stores a batch of overrides. Records that are not in the
// data file follow the same rules as file edits: setting the hidden flag
// fails the batch, other fields are skipped.
func (l *Layer) ApplyUpdates(ctx context.Context, updates []data.Update, version string) (literal.Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var report literal.Report

	baseVersion, err := l.base.Version(ctx)
	if err != nil {
		return report, err
	}

	rev, err := l.store.Revision(ctx)
	if err != nil {
		return report, err
	}

	current := versionOf(baseVersion, rev)
	if version != "" && version != current {
		return report, errors.Wrapf(roofdb.ErrVersionMismatch, "expected %s, current is %s", version, current)
	}

	known := make(map[string]bool)
	keep := make([]data.Update, 0, len(updates))
	for _, u := range updates {
		if err := u.Validate(); err != nil {
			return literal.Report{}, err
		}

		if u.Slug == "" {
			continue
		}

		exists, ok := known[u.Slug]
		if !ok {
			_, err := l.base.Roofer(ctx, u.Slug)
			switch {
			case err == nil:
				exists = true
			case errors.Is(err, roofdb.ErrKeyDoesNotExist):
				exists = false
			default:
				return literal.Report{}, err
			}
			known[u.Slug] = exists
		}

		ops := u.Patch().Ops
		if exists {
			keep = append(keep, u)
			report.Applied += len(ops)
			continue
		}

		for _, op := range ops {
			if op.Required {
				return literal.Report{}, errors.Wrapf(literal.ErrNotFound, "record %q", u.Slug)
			}

			l.log.Warn("roofer not found, field skipped", zap.String("slug", u.Slug), zap.String("field", op.Field))
			report.Skipped = append(report.Skipped, literal.Skip{Key: u.Slug, Field: op.Field})
		}
	}

	if len(keep) == 0 {
		return report, nil
	}

	if _, err := l.store.Upsert(ctx, keep, rev); err != nil {
		if errors.Is(err, ErrRevisionMismatch) {
			return literal.Report{}, errors.Wrap(roofdb.ErrVersionMismatch, err.Error())
		}
		return literal.Report{}, errors.Wrap(roofdb.ErrPersistenceFailed, err.Error())
	}

	return report, nil
}

// Version combines the data file version with the override revision.
func (l *Layer) Version(ctx context.Context) (string, error) {
	baseVersion, err := l.base.Version(ctx)
	if err != nil {
		return "", err
	}

	rev, err := l.store.Revision(ctx)
	if err != nil {
		return "", err
	}

	return versionOf(baseVersion, rev), nil
}

func versionOf(base string, rev int64) string {
	return fmt.Sprintf("%s.%d", base, rev)
}
