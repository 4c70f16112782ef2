package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

// ProductID identifies calendars written by this service.
const ProductID = "-//gymboard//coach week//EN"

// Event is one timed class to export.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// EncodeCalendar serialises events into a VCALENDAR named name.
// PRE: every event has a UID and End after Start
// POST: Returns RFC 5545 text with one VEVENT per event, in input order
func EncodeCalendar(name string, events []Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}
	for _, e := range events {
		ve := cal.AddEvent(e.UID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(e.Summary)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
	}
	return cal.Serialize()
}
