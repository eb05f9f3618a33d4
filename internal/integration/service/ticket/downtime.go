package ticket

import (
	"fmt"
	"time"
)

// formatDowntime renders a duration as "[D days, ]HH:MM:SS". Hours roll over
// at 24 into the day count; the day prefix appears only when non-zero.
func formatDowntime(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = -secs
	}

	days := secs / 86400
	secs -= days * 86400
	hours := secs / 3600
	secs -= hours * 3600
	minutes := secs / 60
	secs -= minutes * 60

	out := fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	if days > 0 {
		out = fmt.Sprintf("%d days, %s", days, out)
	}
	return out
}
