// Package http implements the HTTP handlers for the RevPulse web service.
// It is a thin layer between transport and the service packages: handlers
// bind and validate requests, call one service method, and render either a
// {"status":"success","data":...} envelope or an RFC 7807 problem document.
//
// # Handler Structure
//
// Each handler owns a service interface, a component-scoped logger, the
// shared validation middleware for struct-tag checks, and the shared error
// handler:
//
//	func (h *DashboardHandler) Records(w http.ResponseWriter, r *http.Request) {
//	    req, err := filterFromQuery(h.validation, r)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    records, err := h.service.Records(r.Context(), req)
//	    if err != nil {
//	        h.handleServiceError(w, r, err, "records")
//	        return
//	    }
//	    render.JSON(w, r, map[string]interface{}{"status": "success", "data": records})
//	}
//
// Service errors are mapped with errors.Is against the sentinels the
// services package exports; anything unmapped falls through to the error
// handler's own classification.
//
// # Routes
//
//	GET  /api/dashboard                  overview payload
//	GET  /api/dashboard/records          filtered records for the table
//	GET  /api/dashboard/charts/monthly   chronological per-month series
//	GET  /api/dashboard/charts/entities  per-entity totals series
//	POST /api/dashboard/reload           start a load generation (202)
//	GET  /api/dashboard/load             current load snapshot metadata
//	GET  /api/insight                    best-effort insight for the view
//	GET  /api/export/{format}            csv or xlsx attachment
//	GET  /api/health, /api/version       operational endpoints
//
// Health and version responses skip the success envelope so probes can read
// the status field directly.
//
// # Testing
//
// Handlers are tested with httptest against real services backed by stub
// fetchers, asserting status codes, envelopes, headers, and problem
// documents.
package http
