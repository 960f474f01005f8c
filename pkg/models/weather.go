package models

// WeatherSnapshot holds current conditions in imperial units.
type WeatherSnapshot struct {
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
}
