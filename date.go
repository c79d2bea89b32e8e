package portfolio

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the ISO-8601 layout dates are written with.
const DateFormat = "2006-01-02"

// readDateFormat also accepts single-digit months and days.
const readDateFormat = "2006-1-2"

// Date is a calendar day, without time of day or location. Dates are
// comparable with ==; the zero value is no date.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns the date of year, month and day, normalized the way
// time.Date normalizes: month 13 is January of the next year, day 0 is the
// last day of the previous month.
func NewDate(year int, month time.Month, day int) Date {
	return dateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func dateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{y, m, d}
}

// Today returns the current local date.
func Today() Date { return dateOf(time.Now()) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

func (d Date) IsZero() bool { return d == Date{} }

// time is midnight UTC of the day.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) String() string { return d.time().Format(DateFormat) }

// Compare returns -1, 0 or +1 when d is before, on or after x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

// Add returns the date n days later, or earlier for a negative n.
func (d Date) Add(n int) Date { return NewDate(d.y, d.m, d.d+n) }

var (
	relativeRE = regexp.MustCompile(`^([+-]\d+)([dwmy])$`)
	partialRE  = regexp.MustCompile(`^(?:(\d+)-)?(\d+)$`)
)

// ParseDate reads a date typed by a user. Besides ISO dates ("2025-07-01"
// or "2025-7-1") it accepts:
//
//   - an empty string or "0d" for today,
//   - a signed offset from today in days, weeks, months or years ("-1d",
//     "+2w", "-3m", "-1y"),
//   - a day of the current month ("27") or a month-day of the current year
//     ("8-27"). Month 0 is December of last year, day 0 the last day of the
//     previous month.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	today := Today()
	if s == "" || s == "0d" {
		return today, nil
	}
	if m := relativeRE.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		switch m[2] {
		case "d":
			return today.Add(n), nil
		case "w":
			return today.Add(7 * n), nil
		case "m":
			return NewDate(today.y, today.m+time.Month(n), today.d), nil
		default:
			return NewDate(today.y+n, today.m, today.d), nil
		}
	}
	if m := partialRE.FindStringSubmatch(s); m != nil {
		day, err := strconv.Atoi(m[2])
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		month := today.m
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
			}
			month = time.Month(n)
		}
		return NewDate(today.y, month, day), nil
	}
	return parseISO(s)
}

func parseISO(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q want format %q", ErrInvalidDate, s, DateFormat)
	}
	return dateOf(t), nil
}

// MustParse is like ParseDate but panics on error.
func MustParse(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON only accepts ISO dates: data files never hold relative ones.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := parseISO(s)
	if err != nil {
		return fmt.Errorf("in data file: %w", err)
	}
	*d = v
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }
