// Package http implements the HTTP handlers of the dataset cleaner.
//
// Handlers stay thin: they parse the request, call the dataset service and
// render the result with go-chi/render. Every failure goes through
// errors.ErrorHandler, which answers with RFC 7807 problem details:
//
//	POST /api/clean         run the cleaner, returns the fill report
//	GET  /api/table         the cleaned table (409 before a clean)
//	POST /api/save          {"path": "..."} writes the cleaned table
//	GET  /api/distribution  box statistics per period
//	GET  /api/totals        totals per group key
//	GET  /api/compare       two groups side by side
//	GET  /api/metric        one metric for two entities
//	GET  /api/groups        distinct values of a column
//	GET  /healthz           liveness
//	GET  /readyz            readiness
//	GET  /metrics           Prometheus exposition
//
// Handlers are tested with httptest against a testify mock of the service.
package http
