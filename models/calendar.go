package models

// MaxVisibleSchedules is how many indicator bars a grid cell shows.
const MaxVisibleSchedules = 3

// CalendarCell is one rendered square of the month grid. Date is the
// day-of-month; padding cells before the 1st carry Date <= 0 and no schedules.
type CalendarCell struct {
	Date      int           `json:"date"`
	Schedules []Reservation `json:"schedules"`
}

// Visible returns the schedules shown as indicators on the cell.
func (c CalendarCell) Visible() []Reservation {
	if len(c.Schedules) > MaxVisibleSchedules {
		return c.Schedules[:MaxVisibleSchedules]
	}
	return c.Schedules
}

// IsPadding reports whether the cell precedes the 1st of the month.
func (c CalendarCell) IsPadding() bool {
	return c.Date <= 0
}

// Indicator is a colored status bar rendered inside a cell.
type Indicator struct {
	ReservationID int           `json:"reservationId"`
	Title         string        `json:"title"`
	Status        RequestStatus `json:"status"`
	Color         string        `json:"color"`
}

// CalendarCellView is the JSON shape of a cell returned to the app.
type CalendarCellView struct {
	Date       int           `json:"date"`
	Schedules  []Reservation `json:"schedules"`
	Indicators []Indicator   `json:"indicators"`
	Overflow   int           `json:"overflow"`
}

// CalendarResponse is the API response for the calendar endpoint.
type CalendarResponse struct {
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	Start        string             `json:"start"` // YYYY-MM-DD, first day of the week-aligned grid
	End          string             `json:"end"`   // YYYY-MM-DD, last day of the week-aligned grid
	FirstDOW     int                `json:"firstDow"`
	LastDate     int                `json:"lastDate"`
	Cells        []CalendarCellView `json:"cells"`
	SelectedDate string             `json:"selectedDate,omitempty"`
	Selected     []Reservation      `json:"selected"`
	FetchError   string             `json:"fetchError,omitempty"`
}
