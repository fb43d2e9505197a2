package httpapi

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-pipeline/internal/export"
	"github.com/i474232898/weather-pipeline/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the dashboard handlers into the Fiber app. gatherer
// may be nil, in which case /metrics is not exposed.
func RegisterRoutes(app *fiber.App, d *Dashboard, gatherer prometheus.Gatherer) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-pipeline",
		})
	})

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/readings", func(c *fiber.Ctx) error {
		rows, err := filteredHistory(c, d)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"count":    len(rows),
			"readings": rows,
		})
	})

	v1.Get("/summary", func(c *fiber.Ctx) error {
		rows, err := filteredHistory(c, d)
		if err != nil {
			return err
		}

		return c.JSON(summarize(rows))
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		rows, err := filteredHistory(c, d)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"cities": cityStats(rows),
		})
	})

	v1.Get("/readings/export", func(c *fiber.Ctx) error {
		rows, err := filteredHistory(c, d)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := export.WriteDisplayCSV(&buf, displayRows(rows)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render csv export")
		}

		c.Attachment(fmt.Sprintf("weather_data_%s.csv", time.Now().Format("20060102_150405")))
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(buf.Bytes())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		d.Refresh()
		return c.JSON(fiber.Map{"refreshed": true})
	})
}

// cityFilter holds the city multiselect.
type cityFilter struct {
	Cities []string `validate:"max=50,dive,min=1,max=100"`
}

// parseCityFilter accepts repeated city parameters and comma separated lists.
func parseCityFilter(c *fiber.Ctx) (cityFilter, error) {
	var f cityFilter

	for _, raw := range c.Context().QueryArgs().PeekMulti("city") {
		for _, city := range strings.Split(string(raw), ",") {
			if city = strings.TrimSpace(city); city != "" {
				f.Cities = append(f.Cities, city)
			}
		}
	}

	if err := validate.Struct(f); err != nil {
		return f, err
	}

	return f, nil
}

func filteredHistory(c *fiber.Ctx, d *Dashboard) ([]store.HistoryRow, error) {
	f, err := parseCityFilter(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rows, err := d.History(c.UserContext())
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
	}

	return filterCities(rows, f.Cities), nil
}
