package store

import (
	"context"
	"fmt"
)

const historyColumns = `c.city_name, c.country, c.latitude, c.longitude,
	w.timestamp, w.temperature, w.feels_like, w.temp_min, w.temp_max,
	w.humidity, w.pressure, w.weather_main, w.weather_description,
	w.wind_speed, w.wind_direction, w.cloudiness, w.visibility`

// History returns the full joined reading history, newest first. An empty
// store yields an empty, non-nil slice.
func (s *Store) History(ctx context.Context) ([]HistoryRow, error) {
	rows := make([]HistoryRow, 0)

	err := s.DB.WithContext(ctx).
		Table("weather_data AS w").
		Select(historyColumns).
		Joins("JOIN cities c ON w.city_id = c.city_id").
		Order("w.timestamp DESC").
		Order("w.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query weather history: %w", err)
	}

	return rows, nil
}
