package trademe

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata"
)

// ErrNoDateToken is returned when a date string has no parenthesised epoch.
var ErrNoDateToken = errors.New("trademe: no epoch token in date")

// DateLayout is the format Listing Date values are written in.
const DateLayout = "2006-01-02 15:04:05"

// epochRe matches the millisecond epoch in "/Date(1699999999000)/", with an
// optional trailing UTC offset which is ignored.
var epochRe = regexp.MustCompile(`\(\s*([+-]?\d+)(?:[+-]\d{4})?\s*\)`)

var auckland = mustLoadLocation("Pacific/Auckland")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("trademe: load location %s: %v", name, err))
	}
	return loc
}

// ConvertDate renders the epoch embedded in a vendor date token as local
// New Zealand time.
func ConvertDate(token string) (string, error) {
	m := epochRe.FindStringSubmatch(token)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrNoDateToken, token)
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrNoDateToken, token, err)
	}
	return time.UnixMilli(ms).In(auckland).Format(DateLayout), nil
}
