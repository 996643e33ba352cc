// Package httpapi is the debug HTTP API (SPEC_FULL.md §6, "[ADDED] Debug
// HTTP API"): a thin external consumer of the core, not part of it — the
// same relationship the teacher's internal/server bears to its session/
// provider/tool packages. It exposes session introspection and a synchronous
// task-submission endpoint over internal/tree.Manager and
// internal/controller.
//
// Grounded on internal/server/server.go for the chi.Router + middleware
// setup and internal/server/response.go for the JSON response helpers;
// narrowed from the teacher's full session/message/provider/MCP/SSE surface
// down to the three routes SPEC_FULL.md §6 names, since this package is
// explicitly a debug surface, not a product API.
package httpapi
