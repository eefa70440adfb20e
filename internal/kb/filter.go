package kb

import (
	"strings"

	"visaverse-backend/internal/domain"
)

// Filter holds the structured metadata of a passage. An empty field never
// excludes a profile.
type Filter struct {
	OriginCountry      string
	DestinationCountry string
	Purpose            string
	Language           string
	Tags               []string
}

// NewFilter reads the recognized keys from a metadata header.
func NewFilter(meta map[string]string) Filter {
	f := Filter{
		OriginCountry:      strings.TrimSpace(meta["origin_country"]),
		DestinationCountry: strings.TrimSpace(meta["destination_country"]),
		Purpose:            strings.TrimSpace(meta["purpose"]),
		Language:           strings.TrimSpace(meta["language"]),
	}
	for _, tag := range strings.Split(meta["tags"], ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			f.Tags = append(f.Tags, tag)
		}
	}
	return f
}

// Matches reports whether no set field contradicts the profile.
func (f Filter) Matches(p domain.Profile) bool {
	return matchField(f.OriginCountry, p.OriginCountry) &&
		matchField(f.DestinationCountry, p.DestinationCountry) &&
		matchField(f.Purpose, string(p.Purpose)) &&
		matchField(f.Language, string(p.Language))
}

// Meta returns the filter as snippet metadata, or nil when nothing is set.
func (f Filter) Meta() *domain.DocumentMeta {
	m := domain.DocumentMeta{
		OriginCountry:      f.OriginCountry,
		DestinationCountry: f.DestinationCountry,
		Purpose:            f.Purpose,
		Language:           f.Language,
		Tags:               f.Tags,
	}
	if m.Empty() {
		return nil
	}
	return &m
}

func matchField(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}
