package tour

import (
	"math"
	"sort"

	"travellocal/models"
)

// PreviewStops is how many stops of the first day a locked schedule shows.
const PreviewStops = 2

const earthRadiusKm = 6371.0

// sortedStops orders stops by day, then by order within the day.
func sortedStops(stops []models.ScheduleStop) []models.ScheduleStop {
	out := make([]models.ScheduleStop, len(stops))
	copy(out, stops)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// Preview returns the stops visible to the user. A locked schedule shows only
// the first day's first two stops.
func Preview(stops []models.ScheduleStop, unlocked bool) []models.ScheduleStop {
	sorted := sortedStops(stops)
	if unlocked || len(sorted) == 0 {
		return sorted
	}
	firstDay := sorted[0].Day
	preview := []models.ScheduleStop{}
	for _, s := range sorted {
		if s.Day != firstDay || len(preview) == PreviewStops {
			break
		}
		preview = append(preview, s)
	}
	return preview
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DayDistances sums the distance between consecutive stops of each day.
func DayDistances(stops []models.ScheduleStop) []models.DayDistance {
	sorted := sortedStops(stops)
	distances := []models.DayDistance{}
	for i, s := range sorted {
		if i == 0 || sorted[i-1].Day != s.Day {
			distances = append(distances, models.DayDistance{Day: s.Day})
			continue
		}
		prev := sorted[i-1]
		distances[len(distances)-1].DistanceKm += Haversine(prev.Lat, prev.Lon, s.Lat, s.Lon)
	}
	return distances
}

// TotalDistance sums DayDistances.
func TotalDistance(days []models.DayDistance) float64 {
	total := 0.0
	for _, d := range days {
		total += d.DistanceKm
	}
	return total
}

// View builds the schedule response for a tour. Distances are only exposed
// once the schedule is unlocked.
func View(tour models.TourProgram, unlocked bool) models.ScheduleView {
	visible := Preview(tour.Schedules, unlocked)
	view := models.ScheduleView{
		TourProgramID: tour.ID,
		Title:         tour.Title,
		Unlocked:      unlocked,
		Stops:         visible,
		HiddenStops:   len(tour.Schedules) - len(visible),
	}
	if unlocked {
		view.DayDistances = DayDistances(tour.Schedules)
		view.TotalDistanceKm = TotalDistance(view.DayDistances)
	}
	return view
}
