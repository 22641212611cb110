package middleware

import (
	"strconv"
	"time"

	"go-inventory-api/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per route template
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		metrics.RequestTotal.WithLabelValues(labels...).Inc()
		metrics.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
