package holidays

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/warp/rest-planner/generic"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// FILE PROVIDER - Custom calendars from YAML
// =============================================================================

// FileProvider serves calendars described in a YAML file:
//
//	calendars:
//	  - country: XK
//	    name: Acme Islands
//	    holidays:
//	      - date: "2025-03-03"
//	        name: Founders Day
//	      - date: "2000-06-01"
//	        name: Company Day
//	        recurring: true
//	  - country: FR
//	    subdivision: "974"
//	    holidays:
//	      - date: "2000-12-20"
//	        name: Abolition of Slavery
//	        recurring: true
//
// A calendar without subdivision also answers for every subdivision of
// its country that has no calendar of its own.
type FileProvider struct {
	path      string
	calendars map[regionKey]fileCalendar
}

type regionKey struct {
	country     string
	subdivision string
}

type fileDocument struct {
	Calendars []fileCalendar `yaml:"calendars"`
}

type fileCalendar struct {
	Country     string        `yaml:"country"`
	Subdivision string        `yaml:"subdivision"`
	Name        string        `yaml:"name"`
	Holidays    []fileHoliday `yaml:"holidays"`

	parsed []generic.Holiday
}

type fileHoliday struct {
	Date      string `yaml:"date"`
	Name      string `yaml:"name"`
	Recurring bool   `yaml:"recurring"`
}

// NewFileProvider reads and validates the file at path.
func NewFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday file: %w", err)
	}
	fp, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holiday file %s: %w", path, err)
	}
	fp.path = path
	return fp, nil
}

// ParseFile builds a FileProvider from YAML content.
func ParseFile(data []byte) (*FileProvider, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	fp := &FileProvider{calendars: make(map[regionKey]fileCalendar)}
	for i, cal := range doc.Calendars {
		country, sub := NormalizeRegion(cal.Country, cal.Subdivision)
		if country == "" {
			return nil, fmt.Errorf("calendars[%d]: country is required", i)
		}
		key := regionKey{country: country, subdivision: sub}
		if _, dup := fp.calendars[key]; dup {
			return nil, fmt.Errorf("calendars[%d]: duplicate calendar for %s %s", i, country, sub)
		}
		for j, h := range cal.Holidays {
			date, err := generic.ParseDate(h.Date)
			if err != nil {
				return nil, fmt.Errorf("calendars[%d].holidays[%d]: %w", i, j, err)
			}
			cal.parsed = append(cal.parsed, generic.Holiday{
				CountryCode: country,
				Subdivision: sub,
				Date:        date,
				Name:        h.Name,
				Recurring:   h.Recurring,
			})
		}
		cal.Country, cal.Subdivision = country, sub
		fp.calendars[key] = cal
	}
	return fp, nil
}

var _ Provider = (*FileProvider)(nil)

func (fp *FileProvider) HolidaysFor(_ context.Context, countryCode, subdivision string, year int) (generic.HolidaySet, error) {
	cal, ok := fp.calendars[regionKey{country: countryCode, subdivision: subdivision}]
	if !ok && subdivision != "" {
		cal, ok = fp.calendars[regionKey{country: countryCode}]
	}
	if !ok {
		return generic.HolidaySet{}, &generic.RegionError{
			CountryCode: countryCode,
			Subdivision: subdivision,
			Cause:       fmt.Errorf("not in holiday file %s", fp.path),
		}
	}

	var out []generic.Holiday
	for _, h := range cal.parsed {
		if date, ok := h.OccursIn(year); ok {
			h.Date = date
			out = append(out, h)
		}
	}
	return generic.NewHolidaySet(out...), nil
}

func (fp *FileProvider) Regions() []Region {
	byCountry := make(map[string]*Region)
	for key, cal := range fp.calendars {
		r, ok := byCountry[key.country]
		if !ok {
			r = &Region{CountryCode: key.country, Name: cal.Name, Source: "file"}
			byCountry[key.country] = r
		}
		if key.subdivision != "" {
			r.Subdivisions = append(r.Subdivisions, key.subdivision)
		} else if cal.Name != "" {
			r.Name = cal.Name
		}
	}
	out := make([]Region, 0, len(byCountry))
	for _, r := range byCountry {
		sort.Strings(r.Subdivisions)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out
}
