package calendar

import (
	"errors"
	"time"

	"travellocal/models"
)

// ErrInvalidMonth is returned when month is outside 1..12.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

const dateLayout = "2006-01-02"

// Accepted reservation timestamp layouts, tried in order. Layouts carrying an
// offset are converted into the calendar location; naive ones are read in it.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

// Window describes the displayed month grid.
type Window struct {
	Year     int
	Month    int
	FirstDOW int // weekday of the 1st, Sunday = 0
	LastDate int // days in month
	Start    time.Time
	End      time.Time
}

// MonthWindow computes the week-aligned grid for (year, month): Start is the
// Sunday on or before the 1st and End the Saturday on or after the last day.
func MonthWindow(year, month int, loc *time.Location) (Window, error) {
	if month < 1 || month > 12 {
		return Window{}, ErrInvalidMonth
	}
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc)
	firstDOW := int(first.Weekday())

	return Window{
		Year:     year,
		Month:    month,
		FirstDOW: firstDOW,
		LastDate: last.Day(),
		Start:    first.AddDate(0, 0, -firstDOW),
		End:      last.AddDate(0, 0, 6-int(last.Weekday())),
	}, nil
}

// dayKey collapses a date to an orderable yyyymmdd integer.
func dayKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// parseDay reads a reservation timestamp and returns its calendar day in loc.
func parseDay(value string, loc *time.Location) (int, bool) {
	if value == "" {
		return 0, false
	}
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return dayKey(t.In(loc)), true
		}
	}
	return 0, false
}

// ContainsDay reports whether date falls within [GuideStartDate, GuideEndDate]
// at day granularity, inclusive on both ends. Unparseable bounds never match.
func ContainsDay(r models.Reservation, date time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	start, ok := parseDay(r.GuideStartDate, loc)
	if !ok {
		return false
	}
	end, ok := parseDay(r.GuideEndDate, loc)
	if !ok {
		return false
	}
	day := dayKey(date.In(loc))
	return start <= day && day <= end
}

// ReservationsOnDay returns, in input order, the reservations whose guide
// interval contains date. Both the grid and the selected-date list use it.
func ReservationsOnDay(reservations []models.Reservation, date time.Time, loc *time.Location) []models.Reservation {
	matched := []models.Reservation{}
	for _, r := range reservations {
		if ContainsDay(r, date, loc) {
			matched = append(matched, r)
		}
	}
	return matched
}

// BuildGrid assigns reservations to every cell of the month grid. It yields
// lastDate+firstDOW cells; the first firstDOW are padding cells.
func BuildGrid(reservations []models.Reservation, year, month, firstDOW, lastDate int, loc *time.Location) []models.CalendarCell {
	if loc == nil {
		loc = time.UTC
	}
	cells := make([]models.CalendarCell, 0, lastDate+firstDOW)
	for i := 0; i < lastDate+firstDOW; i++ {
		day := i - firstDOW + 1
		if day <= 0 {
			cells = append(cells, models.CalendarCell{Date: day, Schedules: []models.Reservation{}})
			continue
		}
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
		cells = append(cells, models.CalendarCell{
			Date:      day,
			Schedules: ReservationsOnDay(reservations, date, loc),
		})
	}
	return cells
}

// BuildMonth is BuildGrid over the window computed for (year, month).
func BuildMonth(reservations []models.Reservation, year, month int, loc *time.Location) ([]models.CalendarCell, Window, error) {
	w, err := MonthWindow(year, month, loc)
	if err != nil {
		return nil, Window{}, err
	}
	return BuildGrid(reservations, year, month, w.FirstDOW, w.LastDate, loc), w, nil
}

// StatusColor maps a request status to its indicator color.
func StatusColor(status models.RequestStatus) string {
	switch status {
	case models.StatusAccepted:
		return "#4CAF50"
	case models.StatusPending:
		return "#FFC107"
	case models.StatusRejected:
		return "#F44336"
	}
	return "#9E9E9E"
}

// CellView renders a cell's visible indicators; Overflow counts the
// schedules beyond the first MaxVisibleSchedules.
func CellView(cell models.CalendarCell) models.CalendarCellView {
	visible := cell.Visible()
	indicators := make([]models.Indicator, 0, len(visible))
	for _, r := range visible {
		indicators = append(indicators, models.Indicator{
			ReservationID: r.ID,
			Title:         r.TourProgramTitle,
			Status:        r.RequestStatus,
			Color:         StatusColor(r.RequestStatus),
		})
	}
	return models.CalendarCellView{
		Date:       cell.Date,
		Schedules:  cell.Schedules,
		Indicators: indicators,
		Overflow:   len(cell.Schedules) - len(visible),
	}
}
