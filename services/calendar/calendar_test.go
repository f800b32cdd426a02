package calendar

import (
	"testing"
	"time"

	"travellocal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return loc
}

func juneReservation() models.Reservation {
	return models.Reservation{
		ID:               1,
		TourProgramTitle: "Jeju Olle Walk",
		GuideStartDate:   "2024-06-10T00:00:00",
		GuideEndDate:     "2024-06-12T23:59:59",
		NumOfPeople:      2,
		RequestStatus:    models.StatusAccepted,
	}
}

func cellByDay(cells []models.CalendarCell, day int) models.CalendarCell {
	for _, c := range cells {
		if c.Date == day {
			return c
		}
	}
	return models.CalendarCell{}
}

func TestMonthWindow_June2024(t *testing.T) {
	w, err := MonthWindow(2024, 6, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 6, w.FirstDOW, "June 1st 2024 is a Saturday")
	assert.Equal(t, 30, w.LastDate)
	assert.Equal(t, "2024-05-26", w.Start.Format(dateLayout))
	assert.Equal(t, "2024-07-06", w.End.Format(dateLayout))
}

func TestMonthWindow_February(t *testing.T) {
	w, err := MonthWindow(2024, 2, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 29, w.LastDate)
	assert.Equal(t, 4, w.FirstDOW)

	w, err = MonthWindow(2023, 2, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 28, w.LastDate)
}

func TestMonthWindow_InvalidMonth(t *testing.T) {
	_, err := MonthWindow(2024, 0, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidMonth)
	_, err = MonthWindow(2024, 13, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestBuildMonth_SpanAppearsOnEveryDay(t *testing.T) {
	cells, w, err := BuildMonth([]models.Reservation{juneReservation()}, 2024, 6, time.UTC)
	require.NoError(t, err)
	require.Len(t, cells, w.LastDate+w.FirstDOW)

	for _, cell := range cells {
		switch cell.Date {
		case 10, 11, 12:
			require.Len(t, cell.Schedules, 1, "day %d", cell.Date)
			assert.Equal(t, 1, cell.Schedules[0].ID)
		default:
			assert.Empty(t, cell.Schedules, "day %d", cell.Date)
		}
	}
}

func TestBuildMonth_PaddingCellsAreEmpty(t *testing.T) {
	// A reservation spanning the whole window must still leave padding empty.
	r := models.Reservation{ID: 9, GuideStartDate: "2024-05-01", GuideEndDate: "2024-07-31", RequestStatus: models.StatusPending}
	cells, w, err := BuildMonth([]models.Reservation{r}, 2024, 6, time.UTC)
	require.NoError(t, err)

	for i := 0; i < w.FirstDOW; i++ {
		assert.True(t, cells[i].IsPadding())
		assert.LessOrEqual(t, cells[i].Date, 0)
		assert.Empty(t, cells[i].Schedules)
	}
	for _, cell := range cells[w.FirstDOW:] {
		assert.Len(t, cell.Schedules, 1)
	}
}

func TestBuildMonth_EmptyReservations(t *testing.T) {
	for month := 1; month <= 12; month++ {
		cells, _, err := BuildMonth(nil, 2025, month, time.UTC)
		require.NoError(t, err)
		for _, cell := range cells {
			assert.NotNil(t, cell.Schedules)
			assert.Empty(t, cell.Schedules)
		}
	}
}

func TestBuildMonth_MalformedDatesAreExcluded(t *testing.T) {
	reservations := []models.Reservation{
		{ID: 1, GuideStartDate: "", GuideEndDate: "2024-06-12T00:00:00"},
		{ID: 2, GuideStartDate: "2024-06-10T00:00:00", GuideEndDate: "not-a-date"},
		{ID: 3, GuideStartDate: "2024-06-11", GuideEndDate: "2024-06-11"},
	}

	var cells []models.CalendarCell
	require.NotPanics(t, func() {
		var err error
		cells, _, err = BuildMonth(reservations, 2024, 6, time.UTC)
		require.NoError(t, err)
	})

	for _, cell := range cells {
		for _, r := range cell.Schedules {
			assert.Equal(t, 3, r.ID, "only the well-formed reservation may appear (day %d)", cell.Date)
		}
	}
	assert.Len(t, cellByDay(cells, 11).Schedules, 1)
}

func TestBuildMonth_PreservesInputOrder(t *testing.T) {
	reservations := []models.Reservation{
		{ID: 30, GuideStartDate: "2024-06-05", GuideEndDate: "2024-06-05"},
		{ID: 10, GuideStartDate: "2024-06-01", GuideEndDate: "2024-06-30"},
		{ID: 20, GuideStartDate: "2024-06-05T09:00:00", GuideEndDate: "2024-06-06T18:00:00"},
	}
	cells, _, err := BuildMonth(reservations, 2024, 6, time.UTC)
	require.NoError(t, err)

	got := []int{}
	for _, r := range cellByDay(cells, 5).Schedules {
		got = append(got, r.ID)
	}
	assert.Equal(t, []int{30, 10, 20}, got)
}

func TestContainsDay_IffWithinInterval(t *testing.T) {
	r := juneReservation()
	for day := 1; day <= 30; day++ {
		date := time.Date(2024, time.June, day, 15, 30, 0, 0, time.UTC)
		want := day >= 10 && day <= 12
		assert.Equal(t, want, ContainsDay(r, date, time.UTC), "day %d", day)
	}
}

func TestContainsDay_OffsetTimestampsUseCalendarLocation(t *testing.T) {
	loc := seoul(t)
	// 2024-06-09T16:00Z is 2024-06-10 01:00 in Seoul.
	r := models.Reservation{GuideStartDate: "2024-06-09T16:00:00Z", GuideEndDate: "2024-06-09T16:00:00Z"}

	assert.False(t, ContainsDay(r, time.Date(2024, 6, 9, 0, 0, 0, 0, loc), loc))
	assert.True(t, ContainsDay(r, time.Date(2024, 6, 10, 0, 0, 0, 0, loc), loc))
}

func TestSelectedListAgreesWithGrid(t *testing.T) {
	reservations := []models.Reservation{
		juneReservation(),
		{ID: 2, GuideStartDate: "2024-06-12T10:00:00", GuideEndDate: "2024-06-14T10:00:00", RequestStatus: models.StatusPending},
		{ID: 3, GuideStartDate: "bogus", GuideEndDate: "2024-06-14"},
		{ID: 4, GuideStartDate: "2024-05-30", GuideEndDate: "2024-06-01", RequestStatus: models.StatusRejected},
	}
	cells, _, err := BuildMonth(reservations, 2024, 6, time.UTC)
	require.NoError(t, err)

	for _, cell := range cells {
		if cell.IsPadding() {
			continue
		}
		date := time.Date(2024, time.June, cell.Date, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, cell.Schedules, ReservationsOnDay(reservations, date, time.UTC), "day %d", cell.Date)
	}
}

func TestCellView_TruncatesIndicatorsToThree(t *testing.T) {
	cell := models.CalendarCell{Date: 4}
	for i := 1; i <= 5; i++ {
		cell.Schedules = append(cell.Schedules, models.Reservation{ID: i, RequestStatus: models.StatusAccepted})
	}

	view := CellView(cell)
	assert.Len(t, view.Indicators, models.MaxVisibleSchedules)
	assert.Len(t, view.Schedules, 5, "the full list still backs the detail panel")
	assert.Equal(t, 2, view.Overflow)
	assert.Equal(t, 1, view.Indicators[0].ReservationID)
	assert.Equal(t, "#4CAF50", view.Indicators[0].Color)
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "#4CAF50", StatusColor(models.StatusAccepted))
	assert.Equal(t, "#FFC107", StatusColor(models.StatusPending))
	assert.Equal(t, "#F44336", StatusColor(models.StatusRejected))
	assert.Equal(t, "#9E9E9E", StatusColor(models.RequestStatus("CANCELLED")))
}
