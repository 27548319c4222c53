package monthgrid

// RawEvent is a calendar event as delivered by an event source. Every field
// is optional; an event without a start time cannot be placed on the grid.
type RawEvent struct {
	EventID        string `json:"eventId,omitempty"`
	EventStartTime string `json:"eventStartTime,omitempty"`
	EventEndTime   string `json:"eventEndTime,omitempty"`
	IsAllDay       bool   `json:"isAllDay,omitempty"`
	Label          string `json:"label,omitempty"`
	HTMLLink       string `json:"htmlLink,omitempty"`
}

// DisplayEvent is the rendered form of a RawEvent inside a day cell.
type DisplayEvent struct {
	EventID  string `json:"eventId"`
	HTMLLink string `json:"htmlLink,omitempty"`
	Label    string `json:"label"`
	Tooltip  string `json:"tooltip"`
	IsAllDay bool   `json:"isAllDay"`
}

// DayCell is one day of the month grid.
type DayCell struct {
	// ISO is the day's date as YYYY-MM-DD. It is unique within a grid and is
	// the key used to look up the day's events.
	ISO            string         `json:"iso"`
	DayNumber      int            `json:"dayNumber"`
	IsCurrentMonth bool           `json:"isCurrentMonth"`
	Events         []DisplayEvent `json:"events"`
}

// Week is seven consecutive day cells, Sunday first.
type Week [DaysPerWeek]DayCell

// HasCurrentMonth reports whether any cell of the week belongs to the viewed month.
func (w Week) HasCurrentMonth() bool {
	for _, d := range w {
		if d.IsCurrentMonth {
			return true
		}
	}
	return false
}
