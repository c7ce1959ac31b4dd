package usecase

import (
	"fmt"
	"time"

	"github.com/vicino/backend/internal/domain"
)

const minutesPerDay = 24 * 60

// Countdown thresholds for the open label. Under an hour the label carries
// the countdown; under half an hour the closing-soon flag is raised, which
// affects display priority but never the boolean open state.
const (
	countdownThresholdMinutes   = 60
	closingSoonThresholdMinutes = 30
)

// HoursEngine computes live open/closed state from a weekly schedule.
// All minute arithmetic is in the venue's local time; the schedule is
// assumed already local, and no timezone conversion happens here.
type HoursEngine struct{}

// NewHoursEngine creates a status engine.
func NewHoursEngine() *HoursEngine {
	return &HoursEngine{}
}

// Status evaluates a schedule at the given instant. It considers today's
// periods and yesterday's overnight periods bleeding past midnight; when
// closed, it scans up to a week ahead for the next opening.
func (e *HoursEngine) Status(schedule domain.WeeklySchedule, now time.Time) domain.OpenStatus {
	if len(schedule) == 0 {
		return domain.OpenStatus{Label: "hours unknown"}
	}

	day := int(now.Weekday())
	nowMin := now.Hour()*60 + now.Minute()

	if open, untilClose := openState(schedule, day, nowMin); open {
		return e.openStatus(now, untilClose)
	}

	return e.closedStatus(schedule, now, day, nowMin)
}

// openState reports whether any period covers the current minute, and if a
// closing time exists, how many minutes remain until it. A nil untilClose
// means the venue is open with no scheduled close (24h period).
func openState(schedule domain.WeeklySchedule, day, nowMin int) (bool, *int) {
	yesterday := (day + 6) % 7

	for _, p := range schedule {
		switch p.Day {
		case day:
			if p.CloseMinute == nil {
				// Open-ended period: open all day.
				return true, nil
			}
			open, close := p.OpenMinute, *p.CloseMinute
			if close > open {
				// Same-day period.
				if nowMin >= open && nowMin < close {
					until := close - nowMin
					return true, &until
				}
			} else {
				// Overnight period starting today.
				if nowMin >= open {
					until := (minutesPerDay - nowMin) + close
					return true, &until
				}
			}
		case yesterday:
			// Yesterday's overnight period bleeding into today.
			if p.CloseMinute != nil && *p.CloseMinute <= p.OpenMinute && nowMin < *p.CloseMinute {
				until := *p.CloseMinute - nowMin
				return true, &until
			}
		}
	}

	return false, nil
}

func (e *HoursEngine) openStatus(now time.Time, untilClose *int) domain.OpenStatus {
	isOpen := true
	status := domain.OpenStatus{
		IsOpen: &isOpen,
		Label:  "open",
	}

	if untilClose == nil {
		status.Label = "open 24 hours"
		return status
	}

	closeAt := now.Add(time.Duration(*untilClose) * time.Minute)
	status.NextChangeMinutes = untilClose
	status.NextChangeAt = &closeAt

	if *untilClose < countdownThresholdMinutes {
		status.Label = fmt.Sprintf("open, closes in %d min", *untilClose)
	}
	if *untilClose < closingSoonThresholdMinutes {
		status.ClosingSoon = true
		status.Label = fmt.Sprintf("closing soon, %d min left", *untilClose)
	}

	return status
}

// closedStatus scans forward day by day for the earliest future opening:
// today's remaining periods first, then each following day for a week.
func (e *HoursEngine) closedStatus(schedule domain.WeeklySchedule, now time.Time, day, nowMin int) domain.OpenStatus {
	isOpen := false

	for offset := 0; offset <= 6; offset++ {
		scanDay := (day + offset) % 7
		bestOpen := -1

		for _, p := range schedule {
			if p.Day != scanDay {
				continue
			}
			if offset == 0 && p.OpenMinute <= nowMin {
				continue
			}
			if bestOpen == -1 || p.OpenMinute < bestOpen {
				bestOpen = p.OpenMinute
			}
		}

		if bestOpen == -1 {
			continue
		}

		untilOpen := offset*minutesPerDay + bestOpen - nowMin
		opensAt := now.Add(time.Duration(untilOpen) * time.Minute)

		return domain.OpenStatus{
			IsOpen:            &isOpen,
			Label:             closedLabel(offset, scanDay, bestOpen),
			NextChangeMinutes: &untilOpen,
			NextChangeAt:      &opensAt,
		}
	}

	return domain.OpenStatus{
		IsOpen: &isOpen,
		Label:  "closed indefinitely",
	}
}

func closedLabel(offset, day, openMinute int) string {
	clock := fmt.Sprintf("%02d:%02d", openMinute/60, openMinute%60)
	switch offset {
	case 0:
		return fmt.Sprintf("closed, opens today at %s", clock)
	case 1:
		return fmt.Sprintf("closed, opens tomorrow at %s", clock)
	default:
		return fmt.Sprintf("closed, opens %s at %s", time.Weekday(day), clock)
	}
}
