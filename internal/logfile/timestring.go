package logfile

import (
	"fmt"
	"time"
)

// TimeString formats t as YYMMDD-HHMMSS in t's own location.
// For example, 2022-03-05 14:07:09 -> 220305-140709
func TimeString(t time.Time) string {
	return fmt.Sprintf("%02d%02d%02d-%02d%02d%02d",
		t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}
