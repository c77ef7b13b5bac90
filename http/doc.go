// Package http serves the docs router over HTTP.
//
// Every GET or HEAD request is passed to a RouteResolver, usually a
// *docsgate.Router, and the resulting docsgate.Response is written as is.
// Store failures become 502 Bad Gateway and are logged. Any other method
// gets 405 Method Not Allowed.
//
// # Routes
//
//   - GET /healthz returns "ok" without touching the store
//   - GET /metrics serves Prometheus metrics when a MetricsHandler is set
//   - GET and HEAD /* are resolved by the RouteResolver
//
// # Middleware
//
// RequestID and AccessLog are always installed. Request metrics are recorded
// when HandlerConfig.Metrics is set, and CORS headers are added when
// HandlerConfig.CORS.Enabled is true.
//
// # Usage
//
//	router := docsgate.NewRouter(store, docsgate.RouterConfig{})
//	handler := http.NewHandler(&http.HandlerConfig{}, router)
//	http.ListenAndServe(":8787", handler.Router())
package http
