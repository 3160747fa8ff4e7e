package dates

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
)

const (
	// "dd MMM yyyy" is assembled from these; month names come from the locale table.
	dayLayout  = "02"
	yearLayout = "2006"
	hourLayout = "15:04"
)

var monthAbbreviations = map[language.Tag][12]string{
	language.BrazilianPortuguese: {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	language.AmericanEnglish:     {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// supported lists the tags the matcher may pick; the first entry is the fallback.
var supported = []language.Tag{
	language.BrazilianPortuguese,
	language.AmericanEnglish,
}

var matcher = language.NewMatcher(supported)

// Formatter renders timestamps with a fixed locale and time zone.
type Formatter struct {
	months   [12]string
	location *time.Location
	tag      language.Tag
}

// NewFormatter builds a formatter for the given BCP 47 locale and IANA zone name.
// Unknown locales fall back to Brazilian Portuguese.
func NewFormatter(locale, zone string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	_, index, _ := matcher.Match(tag)
	matched := supported[index]

	loc := time.UTC
	if zone != "" {
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", zone, err)
		}
	}

	return &Formatter{
		months:   monthAbbreviations[matched],
		location: loc,
		tag:      matched,
	}, nil
}

// MustFormatter is NewFormatter for known-good constant arguments.
func MustFormatter(locale, zone string) *Formatter {
	f, err := NewFormatter(locale, zone)
	if err != nil {
		panic(err)
	}
	return f
}

// Locale returns the matched locale tag.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Date renders t as "dd MMM yyyy", e.g. "25 mar 2021".
func (f *Formatter) Date(t time.Time) string {
	t = t.In(f.location)
	return t.Format(dayLayout) + " " + f.months[t.Month()-1] + " " + t.Format(yearLayout)
}

// Hour renders t as "HH:mm".
func (f *Formatter) Hour(t time.Time) string {
	return t.In(f.location).Format(hourLayout)
}

// OptionalDate renders a present timestamp with Date and an absent one as "".
func (f *Formatter) OptionalDate(o OptionalTime) string {
	t, ok := o.Get()
	if !ok {
		return ""
	}
	return f.Date(t)
}
