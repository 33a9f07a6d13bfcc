package handler

import (
	"dq-index/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Routes bundles what RegisterRoutes mounts. SubmitLimiter and Metrics are optional.
type Routes struct {
	Submissions   *SubmissionHandler
	Exports       *ExportHandler
	Health        *HealthHandler
	SubmitLimiter *middleware.IPRateLimiter
	Metrics       *middleware.Metrics
}

// RegisterRoutes mounts the API on app. Fiber's non-strict routing makes
// "/submissions" and "/submissions/" the same route.
func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/", r.Health.Root)
	app.Get("/health", r.Health.Health)
	if r.Metrics != nil {
		app.Get("/metrics", r.Metrics.Handler())
	}

	submissions := app.Group("/submissions")
	submissions.Post("/", middleware.RateLimitByIP(r.SubmitLimiter), r.Submissions.CreateSubmission)
	submissions.Get("/", r.Submissions.ListSubmissions)
	submissions.Get("/:emp_id", r.Submissions.GetSubmission)

	exports := app.Group("/export")
	exports.Get("/", r.Exports.ExportAll)
	exports.Get("/:emp_id", r.Exports.ExportSubmission)
}
