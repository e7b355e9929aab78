package dbtime

import (
	"log"
	"strings"
	"sync"
	"time"

	"fcehub_backend/internals/configs"
)

const defaultBusinessTZ = "America/New_York"

var (
	locOnce sync.Once
	loc     *time.Location
)

// BusinessLocation is BUSINESS_TIMEZONE (default America/New_York), falling
// back to UTC when the zone database lacks it.
func BusinessLocation() *time.Location {
	locOnce.Do(func() {
		name := strings.TrimSpace(configs.GetEnv("BUSINESS_TIMEZONE", defaultBusinessTZ))
		l, err := time.LoadLocation(name)
		if err != nil {
			log.Printf("[TIME] unknown BUSINESS_TIMEZONE %q, using UTC: %v", name, err)
			l = time.UTC
		}
		loc = l
	})
	return loc
}

// ParseDay reads "YYYY-MM-DD" as local midnight in loc, or a full RFC3339
// instant. dateOnly tells the caller which form matched.
func ParseDay(v string, loc *time.Location) (t time.Time, dateOnly bool, ok bool) {
	v = strings.TrimSpace(v)
	if d, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return d.UTC(), true, true
	}
	if d, err := time.Parse(time.RFC3339, v); err == nil {
		return d.UTC(), false, true
	}
	return time.Time{}, false, false
}

// Format renders t in loc, or "" for nil.
func Format(t *time.Time, loc *time.Location, layout string) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format(layout)
}
