package engage

import (
	"errors"
	"regexp"
)

// permalinkRE matches message permalinks. The numeric suffix after "p"
// concatenates seconds and microseconds with no separator.
var permalinkRE = regexp.MustCompile(`https?://[^/]+/archives/(?P<channel>[A-Z0-9]+)/p(?P<pts>\d{16,})`)

// ErrNoPermalink is returned when the input contains no message permalink.
var ErrNoPermalink = errors.New("no message permalink found")

// ParsePermalink extracts the channel ID and timestamp token from the
// first message permalink found in s. The timestamp token restores the
// dot between seconds and the trailing six microsecond digits.
func ParsePermalink(s string) (channel, ts string, err error) {
	m := permalinkRE.FindStringSubmatch(s)
	if m == nil {
		return "", "", ErrNoPermalink
	}
	channel = m[1]
	pts := m[2]
	ts = pts[:len(pts)-6] + "." + pts[len(pts)-6:]
	return channel, ts, nil
}
