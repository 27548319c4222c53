package monthgrid

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Locale holds the strings and layouts needed to label a month view.
type Locale struct {
	Tag language.Tag

	// Months are the full month names, January first.
	Months [12]string
	// Weekdays are the short weekday names, Sunday first.
	Weekdays [DaysPerWeek]string

	// TimeLayout is a Go time layout for hour:minute labels.
	TimeLayout string
	// MonthLabelFormat receives the month name and the year.
	MonthLabelFormat string
	// OpenInFormat receives the provider name, e.g. "Open in %s".
	OpenInFormat string
}

// supportedLocales lists the locales the view can render. The first entry is
// the fallback for unknown tags.
var supportedLocales = []Locale{
	{
		Tag: language.AmericanEnglish,
		Months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		Weekdays:         [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		TimeLayout:       "03:04 PM",
		MonthLabelFormat: "%s %d",
		OpenInFormat:     "Open in %s",
	},
	{
		Tag: language.BritishEnglish,
		Months: [12]string{"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December"},
		Weekdays:         [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		TimeLayout:       "15:04",
		MonthLabelFormat: "%s %d",
		OpenInFormat:     "Open in %s",
	},
	{
		Tag: language.German,
		Months: [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni",
			"Juli", "August", "September", "Oktober", "November", "Dezember"},
		Weekdays:         [DaysPerWeek]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
		TimeLayout:       "15:04",
		MonthLabelFormat: "%s %d",
		OpenInFormat:     "In %s öffnen",
	},
	{
		Tag: language.French,
		Months: [12]string{"janvier", "février", "mars", "avril", "mai", "juin",
			"juillet", "août", "septembre", "octobre", "novembre", "décembre"},
		Weekdays:         [DaysPerWeek]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."},
		TimeLayout:       "15:04",
		MonthLabelFormat: "%s %d",
		OpenInFormat:     "Ouvrir dans %s",
	},
	{
		Tag: language.Spanish,
		Months: [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		Weekdays:         [DaysPerWeek]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
		TimeLayout:       "15:04",
		MonthLabelFormat: "%s de %d",
		OpenInFormat:     "Abrir en %s",
	},
}

var localeMatcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, len(supportedLocales))
	for i, l := range supportedLocales {
		tags[i] = l.Tag
	}
	return tags
}

// DefaultLocale returns the en-US locale.
func DefaultLocale() Locale {
	return supportedLocales[0]
}

// ResolveLocale picks the closest supported locale for a BCP 47 tag such as
// "en-US", "de" or "fr-CA". Unknown or malformed tags fall back to en-US.
func ResolveLocale(tag string) Locale {
	if tag == "" {
		return DefaultLocale()
	}
	t, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale()
	}
	_, idx, conf := localeMatcher.Match(t)
	if conf == language.No {
		return DefaultLocale()
	}
	return supportedLocales[idx]
}

// WeekdayHeaders returns the upper-cased short weekday names for the grid
// header row, Sunday first (SUN, MON, ... for English).
func (l Locale) WeekdayHeaders() [DaysPerWeek]string {
	upper := cases.Upper(l.Tag)
	var out [DaysPerWeek]string
	for i, d := range l.Weekdays {
		out[i] = upper.String(d)
	}
	return out
}
