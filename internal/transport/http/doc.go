// Package http implements the HTTP handlers of the analytics web service.
// Handlers stay thin: they parse and validate the request, call the service
// layer and render the result with go-chi/render. Errors go through
// errors.ErrorHandler so every failure is an RFC 7807 problem document.
//
// # Routes
//
//	GET /api/health              overall status
//	GET /api/health/ready        503 while the order source is unreachable
//	GET /api/health/live         runtime details
//	GET /api/health/version      build information
//	GET /api/analytics/options   filter choices (categories, regions, date span)
//	GET /api/analytics/report    every section for one filter
//	GET /api/analytics/metrics   sales, fulfillment, geography, customer, efficiency
//	GET /api/analytics/trend     daily and monthly series with growth
//	GET /api/analytics/velocity  category velocity scores
//	GET /api/analytics/promotions promotion leaderboard
//	GET /api/analytics/export    report download as json, xlsx or csv
//
// # Filter parameters
//
// The analytics routes accept start and end as YYYY-MM-DD, category and
// region. Missing dates fall back to the dataset span; "All" or an empty
// value disables the category or region filter. end before start is a
// validation error.
package http
