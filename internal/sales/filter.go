package sales

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

// StatusAll disables the status filter.
const StatusAll = "all"

const defaultTopN = 5

// Filter selects the orders a report covers. Zero From/To are open bounds.
type Filter struct {
	Status   string
	From     time.Time
	To       time.Time
	Category string
	TopN     int
}

// ParseFilter reads status, from, to, category and top from query values.
// Dates accept any layout dateparse understands; a bare date in "to"
// covers the whole day.
func ParseFilter(get func(string) string) (Filter, error) {
	f := Filter{
		Status:   string(domain.OrderCompleted),
		Category: strings.TrimSpace(get("category")),
		TopN:     defaultTopN,
	}
	if v := strings.TrimSpace(get("status")); v != "" {
		if strings.EqualFold(v, StatusAll) {
			f.Status = StatusAll
		} else {
			st := domain.CanonicalStatus(v)
			if !st.Valid() {
				return f, domain.Validation("Invalid order status %q", v)
			}
			f.Status = string(st)
		}
	}
	if v := strings.TrimSpace(get("from")); v != "" {
		t, err := dateparse.ParseIn(v, time.Local)
		if err != nil {
			return f, domain.Validation("Invalid from date %q", v)
		}
		f.From = t
	}
	if v := strings.TrimSpace(get("to")); v != "" {
		t, err := dateparse.ParseIn(v, time.Local)
		if err != nil {
			return f, domain.Validation("Invalid to date %q", v)
		}
		if isBareDate(t) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, domain.Validation("Date range is reversed")
	}
	if v := strings.TrimSpace(get("top")); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil || n < 1 {
			return f, domain.Validation("top must be a positive number")
		}
		f.TopN = n
	}
	return f, nil
}

func isBareDate(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
