// Package client talks to the gophauth JSON/HTTP API.
//
// HTTPClient wraps the four account endpoints (sign-up, sign-in, sign-out,
// list) and the liveness probe. Transport failures are reported as
// ErrUnavailable, 401 replies as ErrUnauthorized (wrapped in *APIError so the
// server message is still available), and every other non-2xx reply as
// *APIError.
package client
