package transcript

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTS converts a Slack timestamp string ("1503435956.000247") into a
// local time. A malformed timestamp yields the zero time.
func ParseTS(ts string) time.Time {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Timestamp renders the "[HH:MM] " prefix shown before each message body.
func Timestamp(ts string) string {
	t := ParseTS(ts)
	return fmt.Sprintf("[%02d:%02d] ", t.Hour(), t.Minute())
}

// FileTimestamp renders the full "[<date> - HH;MM]" form used in downloaded
// file names. The date layout is the run's configured one, with slashes
// swapped out so the result stays a valid path component.
func FileTimestamp(ts string, dateLayout string) string {
	t := ParseTS(ts)
	date := strings.ReplaceAll(t.Format(dateLayout), "/", "-")
	return fmt.Sprintf("[%s - %02d;%02d]", date, t.Hour(), t.Minute())
}
