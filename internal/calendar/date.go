// Package calendar implements month-safe date arithmetic and the business-date
// rule used wherever "today" matters for alerting and ledger dating.
package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DateFormat is the ISO-8601 layout used to read and write dates.
const DateFormat = "2006-01-02"

// Date is a calendar day with no time-of-day or location.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, so New(2024, 2, 30) is 2024-03-01.
func New(year int, month time.Month, day int) Date {
	var d Date
	d.y, d.m, d.d = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return d
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Parse reads a date in the 2006-01-02 layout.
func Parse(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, DateFormat, err)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) Year() int { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int { return d.d }
func (d Date) IsZero() bool { return d == Date{} }
func (d Date) Before(x Date) bool { return d.midday().Before(x.midday()) }
func (d Date) After(x Date) bool { return d.midday().After(x.midday()) }
func (d Date) Equal(x Date) bool { return d == x }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// String formats the date as 2006-01-02. The zero Date formats as "".
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.midday().Format(DateFormat)
}

// midday anchors the day at 12:00 UTC so day arithmetic never crosses a
// daylight-saving boundary.
func (d Date) midday() time.Time { return time.Date(d.y, d.m, d.d, 12, 0, 0, 0, time.UTC) }

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped adds n calendar months to d. When the day does not exist
// in the target month it is clamped to that month's last day, so Jan 31 + 1
// month is Feb 28 (or 29), never Mar 3.
func AddMonthsClamped(d Date, n int) Date {
	first := New(d.y, d.m+time.Month(n), 1)
	day := min(d.d, DaysIn(first.y, first.m))
	return Date{first.y, first.m, day}
}

// DayDifference returns the number of calendar days a - b.
func DayDifference(a, b Date) int {
	return int(math.Round(a.midday().Sub(b.midday()).Hours() / 24))
}

// MarshalJSON writes the date as a JSON string, or null for the zero Date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON reads a date from a JSON string. null and "" leave the zero Date.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	v, err := Parse(*s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Value stores the date as TEXT.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan reads a date stored as TEXT or as a driver time value.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case time.Time:
		*d = New(v.UTC().Date())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into calendar.Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	// Some drivers hand back full timestamps for DATE columns.
	if len(s) > len(DateFormat) {
		s = s[:len(DateFormat)]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
	_ driver.Valuer    = Date{}
)
