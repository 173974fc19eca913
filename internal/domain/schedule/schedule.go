package schedule

import (
	"fmt"
	"time"
)

// TimeSlot is a single bookable tick within business hours. Slots are
// derived on every query and never persisted.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// BusinessHours configures the bookable day: opening and closing hour
// (half-open interval) plus the weekdays the business is closed.
type BusinessHours struct {
	Start               int
	End                 int
	SlotDurationMinutes int
	DaysOff             []time.Weekday
}

// DefaultBusinessHours is 9:00-17:00 in 30 minute slots, closed weekends.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Start:               9,
		End:                 17,
		SlotDurationMinutes: 30,
		DaysOff:             []time.Weekday{time.Sunday, time.Saturday},
	}
}

// IsDayOff reports whether the given date falls on a closed weekday.
func (h BusinessHours) IsDayOff(date time.Time) bool {
	for _, d := range h.DaysOff {
		if date.Weekday() == d {
			return true
		}
	}
	return false
}

// Slots enumerates every slot-aligned tick in [Start, End) for an open day,
// all marked available. The caller cross-references existing bookings to
// flip taken slots. Returns nil when the date is a day off.
func (h BusinessHours) Slots(date time.Time) []TimeSlot {
	if h.IsDayOff(date) || h.SlotDurationMinutes <= 0 {
		return nil
	}

	var slots []TimeSlot
	for hour := h.Start; hour < h.End; hour++ {
		for m := 0; m < 60; m += h.SlotDurationMinutes {
			slots = append(slots, TimeSlot{
				Time:      fmt.Sprintf("%02d:%02d", hour, m),
				Available: true,
			})
		}
	}
	return slots
}
