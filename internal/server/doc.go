// Package server exposes audits over HTTP.
//
// Routes:
//
//	POST /api/audit             audit {"url": ...} and save the result
//	GET  /api/audits/recent     newest saved audits (?limit=, default 10)
//	GET  /api/audits/{id}       one saved audit
//	POST /api/export/{format}   render a saved audit ({"auditId": n}) or a posted result
//	GET  /health, /ping, /api/status, /metrics
//
// HTML export is premium and passes through a Gate. Every response carries
// an X-Request-ID; errors are JSON objects with error, code and requestId.
package server
