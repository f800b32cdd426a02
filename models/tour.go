package models

// ScheduleStop is one stop of a tour program's day-by-day schedule.
type ScheduleStop struct {
	Day         int     `json:"day"`
	Order       int     `json:"order"`
	PlaceName   string  `json:"placeName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Description string  `json:"description,omitempty"`
}

// TourProgram is the tour-detail response of the backend.
type TourProgram struct {
	ID        int            `json:"id"`
	Title     string         `json:"title"`
	Region    string         `json:"region,omitempty"`
	Hashtags  []string       `json:"hashtags,omitempty"`
	PointPaid bool           `json:"pointPaid"`
	Schedules []ScheduleStop `json:"schedules"`
}

// DayDistance is the haversine distance travelled on a single tour day.
type DayDistance struct {
	Day        int     `json:"day"`
	DistanceKm float64 `json:"distanceKm"`
}

// ScheduleView is the schedule as returned to the app, masked when locked.
type ScheduleView struct {
	TourProgramID   int            `json:"tourProgramId"`
	Title           string         `json:"title"`
	Unlocked        bool           `json:"unlocked"`
	Stops           []ScheduleStop `json:"stops"`
	HiddenStops     int            `json:"hiddenStops"`
	DayDistances    []DayDistance  `json:"dayDistances,omitempty"`
	TotalDistanceKm float64        `json:"totalDistanceKm,omitempty"`
}
