// Package types implements special types for the ledger backend.
package types

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// Month is a month in a specific year. All month arithmetic is done on the
// UTC calendar.
type Month time.Time

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the Month in which a time occurs, evaluated in UTC.
func MonthOf(t time.Time) Month {
	year, month, _ := t.In(time.UTC).Date()
	return NewMonth(year, month)
}

// CurrentUTC returns the current UTC month shifted by offset months.
// An offset of 0 is the current month, -1 the previous one.
func CurrentUTC(offset int) Month {
	return MonthOf(time.Now()).AddMonths(offset)
}

// ParseMonth parses a "YYYY-MM" string and returns the Month value it represents.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, err
	}

	return MonthOf(t), nil
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

// Name returns the human readable month name, e.g. "January 2006".
func (m Month) Name() string {
	return time.Time(m).Format("January 2006")
}

// Range returns the date range covered by the month: the first instant of
// the month (inclusive) and the first instant of the next month (exclusive),
// both in UTC.
func (m Month) Range() (start, end time.Time) {
	start = time.Date(time.Time(m).Year(), time.Time(m).Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// AddMonths adds a number of months, which may be negative.
func (m Month) AddMonths(months int) Month {
	return Month(time.Time(m).AddDate(0, months, 0))
}

// Equal reports whether m and n represent the same month.
func (m Month) Equal(n Month) bool {
	return time.Time(m).Equal(time.Time(n))
}

// Before reports whether the month instant m is before n.
func (m Month) Before(n Month) bool {
	return time.Time(m).Before(time.Time(n))
}

// Contains reports whether the time instant is in the month.
func (m Month) Contains(t time.Time) bool {
	u := t.In(time.UTC)
	return u.Year() == time.Time(m).Year() && u.Month() == time.Time(m).Month()
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return time.Time(m).IsZero()
}

// Scan reads the value from the database.
func (m *Month) Scan(value interface{}) error {
	nullTime := &sql.NullTime{}
	err := nullTime.Scan(value)
	*m = MonthOf(nullTime.Time)
	return err
}

// Value returns the value for the SQL driver to write to the database.
func (m Month) Value() (driver.Value, error) {
	year, month, _ := time.Time(m).Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Month) GormDataType() string {
	return "date"
}
