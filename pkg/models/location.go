package models

// LocationGuess is the language model's structured reading of a free-text location.
// Coordinates of 0,0 are a real place, not a sentinel for "unknown".
type LocationGuess struct {
	PlaceName string  `json:"place_name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
}

// CityGuess is the legacy {city, state} reading of a free-text US location.
type CityGuess struct {
	City  string `json:"city"`
	State string `json:"state"`
}
