package store

import (
	"time"

	"github.com/i474232898/weather-pipeline/internal/weather"
)

// City is a reference row, created once per distinct city name on first sighting.
type City struct {
	ID        uint    `gorm:"column:city_id;primaryKey;autoIncrement"`
	Name      string  `gorm:"column:city_name;size:100;uniqueIndex;not null"`
	Country   string  `gorm:"size:10"`
	Latitude  float64
	Longitude float64
}

func (City) TableName() string { return "cities" }

// WeatherData is an append-only fact row bound to a City.
type WeatherData struct {
	ID     uint `gorm:"primaryKey;autoIncrement"`
	CityID uint `gorm:"column:city_id;not null;index"`
	City   City `gorm:"foreignKey:CityID;references:ID"`

	Timestamp   time.Time `gorm:"not null;index"`
	Temperature float64
	FeelsLike   float64
	TempMin     float64
	TempMax     float64
	Humidity    float64
	Pressure    float64

	WeatherMain        string `gorm:"size:50"`
	WeatherDescription string `gorm:"size:100"`

	WindSpeed     float64
	WindDirection float64
	Cloudiness    float64
	Visibility    int
}

func (WeatherData) TableName() string { return "weather_data" }

func newWeatherData(cityID uint, r weather.Reading) WeatherData {
	return WeatherData{
		CityID:             cityID,
		Timestamp:          r.Timestamp,
		Temperature:        r.Temperature,
		FeelsLike:          r.FeelsLike,
		TempMin:            r.TempMin,
		TempMax:            r.TempMax,
		Humidity:           r.Humidity,
		Pressure:           r.Pressure,
		WeatherMain:        r.WeatherMain,
		WeatherDescription: r.WeatherDescription,
		WindSpeed:          r.WindSpeed,
		WindDirection:      r.WindDirection,
		Cloudiness:         r.Cloudiness,
		Visibility:         r.Visibility,
	}
}

// HistoryRow is one row of the cities ⋈ weather_data read model.
type HistoryRow struct {
	CityName  string  `json:"city_name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`

	WeatherMain        string `json:"weather_main"`
	WeatherDescription string `json:"weather_description"`

	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	Cloudiness    float64 `json:"cloudiness"`
	Visibility    int     `json:"visibility"`
}
