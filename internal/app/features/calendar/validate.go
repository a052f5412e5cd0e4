// internal/app/features/calendar/validate.go
package calendar

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/studypal/internal/app/system/apierr"
	"github.com/dalemusser/studypal/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studypal/internal/app/system/inputval"
	"github.com/dalemusser/studypal/internal/app/system/normalize"
	"github.com/dalemusser/studypal/internal/domain/models"
)

// Reminder offsets are minutes before the start, up to four weeks.
const (
	maxReminderMinutes = 4 * 7 * 24 * 60
	maxReminders       = 5
)

// ValidateEvent turns in into an Event owned by userID.
// Type defaults to "other" and priority to "medium".
func ValidateEvent(in EventInput, userID string) (models.Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = normalize.Lower(in.Type)
	in.Priority = normalize.Lower(in.Priority)
	in.MeetingURL = strings.TrimSpace(in.MeetingURL)

	if res := inputval.Validate(in); res.HasErrors() {
		return models.Event{}, apierr.Validation(res.FirstField(), res.First())
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(in.StartDate))
	if err != nil {
		return models.Event{}, apierr.Validation("startDate", "Start date must be an RFC 3339 timestamp.")
	}
	var end *time.Time
	if s := strings.TrimSpace(in.EndDate); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return models.Event{}, apierr.Validation("endDate", "End date must be an RFC 3339 timestamp.")
		}
		if t.Before(start) {
			return models.Event{}, apierr.Validation("endDate", "End date must not be before the start date.")
		}
		t = t.UTC()
		end = &t
	}

	reminders, err := normalizeReminders(in.Reminders)
	if err != nil {
		return models.Event{}, err
	}

	e := models.Event{
		UserID:      userID,
		Title:       in.Title,
		Description: htmlsanitize.StripTags(in.Description),
		StartDate:   start.UTC(),
		EndDate:     end,
		Type:        in.Type,
		Priority:    in.Priority,
		Location:    strings.TrimSpace(in.Location),
		IsOnline:    in.IsOnline,
		MeetingURL:  in.MeetingURL,
		Reminders:   reminders,
	}
	if e.Type == "" {
		e.Type = models.EventTypeOther
	}
	if e.Priority == "" {
		e.Priority = models.PriorityMedium
	}
	return e, nil
}

// normalizeReminders dedups offsets and orders them longest lead first.
func normalizeReminders(in []int) ([]int, error) {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, m := range in {
		if m < 1 || m > maxReminderMinutes {
			return nil, apierr.Validation("reminders", "Reminders must be between 1 minute and 4 weeks before the start.")
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	if len(out) > maxReminders {
		return nil, apierr.Validation("reminders", "At most 5 reminders are allowed.")
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

// MonthRange reads month (0-11) and year from v and returns the first and
// last instant of that month in UTC. Without both parameters the month
// containing now is used.
func MonthRange(v url.Values, now time.Time) (from, to time.Time, err error) {
	ms, ys := strings.TrimSpace(v.Get("month")), strings.TrimSpace(v.Get("year"))

	year, month := now.UTC().Year(), int(now.UTC().Month())-1
	if ms != "" || ys != "" {
		m, merr := strconv.Atoi(ms)
		if merr != nil || m < 0 || m > 11 {
			return time.Time{}, time.Time{}, apierr.Validation("month", "Month must be a number from 0 to 11.")
		}
		y, yerr := strconv.Atoi(ys)
		if yerr != nil || len(ys) != 4 {
			return time.Time{}, time.Time{}, apierr.Validation("year", "Year must be a four-digit number.")
		}
		year, month = y, m
	}

	from = time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0).Add(-time.Millisecond)
	return from, to, nil
}
