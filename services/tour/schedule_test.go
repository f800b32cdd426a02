package tour

import (
	"testing"

	"travellocal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStops() []models.ScheduleStop {
	return []models.ScheduleStop{
		{Day: 2, Order: 1, PlaceName: "Haeundae", Lat: 35.1587, Lon: 129.1604},
		{Day: 1, Order: 3, PlaceName: "Namsan Tower", Lat: 37.5512, Lon: 126.9882},
		{Day: 1, Order: 1, PlaceName: "Gyeongbokgung", Lat: 37.5796, Lon: 126.9770},
		{Day: 1, Order: 2, PlaceName: "Bukchon", Lat: 37.5826, Lon: 126.9830},
		{Day: 2, Order: 2, PlaceName: "Gamcheon", Lat: 35.0975, Lon: 129.0106},
	}
}

func TestPreview_LockedShowsFirstTwoStopsOfFirstDay(t *testing.T) {
	got := Preview(sampleStops(), false)
	require.Len(t, got, 2)
	assert.Equal(t, "Gyeongbokgung", got[0].PlaceName)
	assert.Equal(t, "Bukchon", got[1].PlaceName)
}

func TestPreview_LockedSingleStopDay(t *testing.T) {
	stops := []models.ScheduleStop{
		{Day: 1, Order: 1, PlaceName: "A"},
		{Day: 2, Order: 1, PlaceName: "B"},
	}
	got := Preview(stops, false)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].PlaceName)
}

func TestPreview_UnlockedShowsAllSorted(t *testing.T) {
	got := Preview(sampleStops(), true)
	require.Len(t, got, 5)
	assert.Equal(t, "Gyeongbokgung", got[0].PlaceName)
	assert.Equal(t, "Gamcheon", got[4].PlaceName)
	assert.Empty(t, Preview(nil, false))
}

func TestHaversine_SeoulToBusan(t *testing.T) {
	d := Haversine(37.5665, 126.9780, 35.1796, 129.0756)
	assert.InDelta(t, 325, d, 5)
	assert.InDelta(t, 0, Haversine(37.5, 127, 37.5, 127), 1e-9)
}

func TestDayDistances(t *testing.T) {
	days := DayDistances(sampleStops())
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].Day)
	assert.Equal(t, 2, days[1].Day)

	day1 := Haversine(37.5796, 126.9770, 37.5826, 126.9830) + Haversine(37.5826, 126.9830, 37.5512, 126.9882)
	assert.InDelta(t, day1, days[0].DistanceKm, 1e-9)
	assert.Greater(t, days[1].DistanceKm, 10.0)
	assert.InDelta(t, days[0].DistanceKm+days[1].DistanceKm, TotalDistance(days), 1e-9)
}

func TestView_MasksLockedSchedules(t *testing.T) {
	tour := models.TourProgram{ID: 4, Title: "Seoul & Busan", Schedules: sampleStops()}

	locked := View(tour, false)
	assert.False(t, locked.Unlocked)
	assert.Len(t, locked.Stops, 2)
	assert.Equal(t, 3, locked.HiddenStops)
	assert.Empty(t, locked.DayDistances)

	open := View(tour, true)
	assert.Len(t, open.Stops, 5)
	assert.Zero(t, open.HiddenStops)
	assert.Len(t, open.DayDistances, 2)
	assert.Greater(t, open.TotalDistanceKm, 0.0)
}
