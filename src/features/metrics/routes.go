package metrics

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers the metrics routes with the Fiber app.
func RegisterRoutes(app *fiber.App, recorder *Recorder) {
	handler := promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{})
	app.Get("/metrics", adaptor.HTTPHandler(handler))
}
