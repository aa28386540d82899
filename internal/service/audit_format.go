package service

import (
	"fmt"
	"strings"

	"github.com/auditkit/revision-service/internal/domain"
)

const rootCollectionName = "Our analytics"

func recipientList(channels []domain.Channel) []string {
	var out []string
	for _, ch := range channels {
		if !ch.Enabled {
			continue
		}
		if ch.Type == domain.ChannelSlack && ch.SlackChannel != "" {
			out = append(out, ch.SlackChannel)
		}
		for _, r := range ch.Recipients {
			out = append(out, r.Email)
		}
	}
	return out
}

func channelTypes(channels []domain.Channel) string {
	var types []string
	for _, ch := range channels {
		if ch.Enabled {
			types = append(types, string(ch.Type))
		}
	}
	return strings.Join(types, ", ")
}

func collectionName(c *domain.CollectionRef) string {
	if c == nil {
		return rootCollectionName
	}
	return c.Name
}

// frequency describes the schedule of the first enabled channel.
func frequency(channels []domain.Channel) string {
	for _, ch := range channels {
		if ch.Enabled {
			return scheduleText(ch)
		}
	}
	return ""
}

func scheduleText(ch domain.Channel) string {
	at := ""
	if ch.ScheduleHour != nil {
		at = " at " + hourText(*ch.ScheduleHour)
	}
	switch ch.ScheduleType {
	case domain.ScheduleHourly:
		return "Every hour"
	case domain.ScheduleDaily:
		return "Every day" + at
	case domain.ScheduleWeekly:
		return fmt.Sprintf("Every %s%s", dayName(ch.ScheduleDay), at)
	case domain.ScheduleMonthly:
		return "Every month" + at
	default:
		return string(ch.ScheduleType)
	}
}

func hourText(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}

func dayName(day string) string {
	switch strings.ToLower(day) {
	case "mon":
		return "Monday"
	case "tue":
		return "Tuesday"
	case "wed":
		return "Wednesday"
	case "thu":
		return "Thursday"
	case "fri":
		return "Friday"
	case "sat":
		return "Saturday"
	case "sun":
		return "Sunday"
	default:
		return "week"
	}
}

func comparison(a domain.Alert) string {
	if a.Condition != domain.AlertConditionGoal {
		return "Has any results"
	}
	if a.AboveGoal != nil && !*a.AboveGoal {
		return "Goes below goal"
	}
	return "Goes above goal"
}

func filterList(filters []domain.DashboardFilter) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		out = append(out, fmt.Sprintf("%s: %v", f.Name, f.Value))
	}
	return out
}
