package data

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/Bitfisherllc/roofdb/internal/literal"
)

var ErrInvalidUpdate = errors.New("invalid roofer update")

type ListingType string

const (
	Preferred ListingType = "preferred"
	Sponsored ListingType = "sponsored"
	General   ListingType = "general"
)

// Area buckets in the order they are written to the data file.
const (
	Regions  = "regions"
	Counties = "counties"
	Cities   = "cities"
)

type ServiceAreas struct {
	Regions  []string `json:"regions"`
	Counties []string `json:"counties"`
	Cities   []string `json:"cities"`
}

// Buckets returns the areas as ordered named tag lists. Empty lists are kept.
func (sa ServiceAreas) Buckets() []literal.Bucket {
	return []literal.Bucket{
		{Name: Regions, Tags: nonNil(sa.Regions)},
		{Name: Counties, Tags: nonNil(sa.Counties)},
		{Name: Cities, Tags: nonNil(sa.Cities)},
	}
}

type Roofer struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Slug              string       `json:"slug"`
	Phone             string       `json:"phone,omitempty"`
	Email             string       `json:"email,omitempty"`
	WebsiteURL        string       `json:"websiteUrl,omitempty"`
	GoogleBusinessURL string       `json:"googleBusinessUrl,omitempty"`
	LicenseNumber     string       `json:"licenseNumber,omitempty"`
	LogoURL           string       `json:"logoUrl,omitempty"`
	AboutText         string       `json:"aboutText,omitempty"`
	IsPreferred       bool         `json:"isPreferred"`
	IsHidden          bool         `json:"isHidden"`
	SortOverride      *int         `json:"sortOverride,omitempty"`
	Category          string       `json:"category,omitempty"`
	ServiceAreas      ServiceAreas `json:"serviceAreas"`
	Address           string       `json:"address,omitempty"`
	City              string       `json:"city,omitempty"`
	State             string       `json:"state,omitempty"`
	ZipCode           string       `json:"zipCode,omitempty"`
	YearsInBusiness   int          `json:"yearsInBusiness,omitempty"`
	Specialties       []string     `json:"specialties,omitempty"`
}

// DisplayCategory is the stored category, or general when none is set.
func (r Roofer) DisplayCategory() string {
	if r.Category == "" {
		return string(General)
	}
	return r.Category
}

func ListingTypeOf(r Roofer) ListingType {
	switch {
	case r.Category == string(Preferred) || r.IsPreferred:
		return Preferred
	case r.Category == string(Sponsored):
		return Sponsored
	default:
		return General
	}
}

// ServesArea reports whether r covers the given area. A roofer serving the
// enclosing county or region also serves a city in it. Empty arguments do
// not constrain the match.
func (r Roofer) ServesArea(region, county, city string) bool {
	sa := r.ServiceAreas
	byRegion := region != "" && contains(sa.Regions, region)
	byCounty := county != "" && contains(sa.Counties, county)

	switch {
	case city != "":
		return contains(sa.Cities, city) || byCounty || byRegion
	case county != "":
		return byCounty || byRegion
	case region != "":
		return byRegion
	default:
		return true
	}
}

// SortDirectory orders roofers for public listings: preferred first, then by
// sort override (lower first, unset last), then by name.
func SortDirectory(rs []Roofer) {
	sort.SliceStable(rs, func(i, j int) bool {
		pi, pj := ListingTypeOf(rs[i]) == Preferred, ListingTypeOf(rs[j]) == Preferred
		if pi != pj {
			return pi
		}

		oi, oj := rs[i].SortOverride, rs[j].SortOverride
		switch {
		case oi != nil && oj == nil:
			return true
		case oi == nil && oj != nil:
			return false
		case oi != nil && oj != nil && *oi != *oj:
			return *oi < *oj
		}

		return strings.ToLower(rs[i].Name) < strings.ToLower(rs[j].Name)
	})
}

// Update is one admin edit. Nil fields are left untouched.
type Update struct {
	Slug              string        `json:"slug"`
	IsPreferred       *bool         `json:"isPreferred,omitempty"`
	IsHidden          *bool         `json:"isHidden,omitempty"`
	GoogleBusinessURL *string       `json:"googleBusinessUrl,omitempty"`
	Category          *string       `json:"category,omitempty"`
	Phone             *string       `json:"phone,omitempty"`
	Email             *string       `json:"email,omitempty"`
	WebsiteURL        *string       `json:"websiteUrl,omitempty"`
	ServiceAreas      *ServiceAreas `json:"serviceAreas,omitempty"`
}

func (u Update) Validate() error {
	if u.Category == nil {
		return nil
	}

	switch ListingType(*u.Category) {
	case Preferred, Sponsored, General:
		return nil
	default:
		return errors.Wrapf(ErrInvalidUpdate, "roofer %q: unknown category %q", u.Slug, *u.Category)
	}
}

// Patch converts u into record edits. The hidden flag is mandatory for an
// existing record: a missing record fails the whole batch when it is set.
func (u Update) Patch() literal.Patch {
	p := literal.Patch{Key: u.Slug}

	if u.IsPreferred != nil {
		p.Ops = append(p.Ops, literal.Bool("isPreferred", *u.IsPreferred))
	}
	if u.IsHidden != nil {
		p.Ops = append(p.Ops, literal.Bool("isHidden", *u.IsHidden).Require())
	}

	strs := []struct {
		field string
		v     *string
	}{
		{"googleBusinessUrl", u.GoogleBusinessURL},
		{"category", u.Category},
		{"phone", u.Phone},
		{"email", u.Email},
		{"websiteUrl", u.WebsiteURL},
	}
	for _, s := range strs {
		if s.v != nil {
			p.Ops = append(p.Ops, literal.String(s.field, *s.v))
		}
	}

	if u.ServiceAreas != nil {
		p.Ops = append(p.Ops, literal.Groups("serviceAreas", u.ServiceAreas.Buckets()...))
	}

	return p
}

// Patches converts a batch of updates, validating each one first.
func Patches(updates []Update) ([]literal.Patch, error) {
	result := make([]literal.Patch, 0, len(updates))
	for _, u := range updates {
		if err := u.Validate(); err != nil {
			return nil, err
		}
		result = append(result, u.Patch())
	}

	return result, nil
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
