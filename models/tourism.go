package models

// TourismItem is one entry returned by the public tourism data API.
type TourismItem struct {
	ContentID string `json:"contentid"`
	Title     string `json:"title"`
	Addr1     string `json:"addr1"`
	AreaCode  string `json:"areacode"`
	MapX      string `json:"mapx"`
	MapY      string `json:"mapy"`
	FirstImg  string `json:"firstimage"`
}

// TourismPage is a page of public tourism items.
type TourismPage struct {
	Items      []TourismItem `json:"items"`
	TotalCount int           `json:"totalCount"`
	PageNo     int           `json:"pageNo"`
}
