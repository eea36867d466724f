package heist

import (
	"fmt"
	"math"
	"time"

	"heist-tracker/internal/model"
)

const labelTimeFormat = "Jan 2, 3:04 PM"

// DeadlineLabel renders the deadline for display: time remaining while the
// heist is live, time since expiry afterwards. Which side applies is decided
// by the model's expiry predicate, never by a second comparison here.
func DeadlineLabel(h model.Heist, now time.Time) string {
	if h.Expired(now) {
		return formatExpired(h.Deadline, now)
	}
	return formatDeadline(h.Deadline, now)
}

func formatDeadline(deadline, now time.Time) string {
	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	formatted := deadline.Format(labelTimeFormat)

	switch {
	case days == 0:
		return "Today, " + formatted
	case days == 1:
		return "Tomorrow, " + formatted
	case days > 0 && days <= 7:
		return fmt.Sprintf("%dd left - %s", days, formatted)
	case days < 0:
		return "Overdue - " + formatted
	}
	return formatted
}

func formatExpired(deadline, now time.Time) string {
	days := int(math.Floor(now.Sub(deadline).Hours() / 24))
	formatted := deadline.Format(labelTimeFormat)

	switch {
	case days == 0:
		return "Expired today - " + formatted
	case days == 1:
		return "Expired yesterday - " + formatted
	case days <= 7:
		return fmt.Sprintf("Expired %dd ago - %s", days, formatted)
	case days <= 30:
		return fmt.Sprintf("Expired %dw ago - %s", days/7, formatted)
	}
	return "Expired " + formatted
}
