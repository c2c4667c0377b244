package controller

import "time"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// TimeFormatter renders service timestamps for display in one location.
type TimeFormatter struct {
	loc    *time.Location
	layout string
}

func NewTimeFormatter(loc *time.Location, layout string) *TimeFormatter {
	if loc == nil {
		loc = time.Local
	}
	return &TimeFormatter{loc: loc, layout: layout}
}

// Format parses an ISO-8601 timestamp and renders it with the display layout.
// Timestamps without a zone are read in the display location. Values that do
// not parse are returned unchanged.
func (f *TimeFormatter) Format(iso string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, iso, f.loc); err == nil {
			return t.In(f.loc).Format(f.layout)
		}
	}
	return iso
}
