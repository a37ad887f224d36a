package options

import (
	"sort"

	"github.com/Bitfisherllc/roofdb/internal/data"
)

type Order string

const (
	Ascend  Order = "ASC"
	Descend Order = "DESC"

	// InFile keeps records in the order they appear in the data file.
	InFile Order = "FILE"

	// Directory lists preferred roofers first, then by sort override and name.
	Directory Order = "DIRECTORY"
)

type Area struct {
	Region, County, City string
}

type FindOptions struct {
	O      Order
	Hidden bool
	A      *Area
	Limit  int
}

func (fo *FindOptions) SetOrder(o Order) *FindOptions {
	fo.O = o
	return fo
}

// IncludeHidden makes hidden roofers part of the result.
func (fo *FindOptions) IncludeHidden() *FindOptions {
	fo.Hidden = true
	return fo
}

func (fo *FindOptions) InArea(region, county, city string) *FindOptions {
	if region == "" && county == "" && city == "" {
		fo.A = nil
		return fo
	}

	fo.A = &Area{Region: region, County: county, City: city}
	return fo
}

func (fo *FindOptions) SetLimit(n int) *FindOptions {
	fo.Limit = n
	return fo
}

func (fo *FindOptions) Match(r data.Roofer) bool {
	if r.IsHidden && !fo.Hidden {
		return false
	}

	if fo.A != nil && !r.ServesArea(fo.A.Region, fo.A.County, fo.A.City) {
		return false
	}

	return true
}

// Filter returns the matching roofers of rs, ordered and limited. rs is
// expected in file order.
func (fo *FindOptions) Filter(rs []data.Roofer) []data.Roofer {
	result := make([]data.Roofer, 0, len(rs))
	for _, r := range rs {
		if fo.Match(r) {
			result = append(result, r)
		}
	}

	fo.Sort(result)

	if fo.Limit > 0 && len(result) > fo.Limit {
		result = result[:fo.Limit]
	}

	return result
}

func (fo *FindOptions) Sort(rs []data.Roofer) {
	switch fo.O {
	case Ascend:
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Slug < rs[j].Slug })
	case Descend:
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].Slug > rs[j].Slug })
	case Directory:
		data.SortDirectory(rs)
	}
}

func Find() *FindOptions {
	return &FindOptions{O: Ascend}
}
