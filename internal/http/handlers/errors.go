// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, not_found) mirror common HTTP status
//     semantics to aid interoperability.
//   - Upstream-specific codes (upstream_*) distinguish failures of the LegiScan
//     dependency from failures of this service, so clients can tell "you sent a
//     bad request" apart from "the data source is unavailable".
//   - All error responses must include both an HTTP status and one of these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "quota_exhausted",
//	  "message": "service temporarily limited, try again later"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Upstream / quota specific:
	ErrCodeQuotaExhausted       = "quota_exhausted"
	ErrCodeUpstreamRateLimited  = "upstream_rate_limited"
	ErrCodeUpstreamUnauthorized = "upstream_unauthorized"
	ErrCodeUpstreamError        = "upstream_error"
)
