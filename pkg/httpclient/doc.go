// Package httpclient provides the pooled HTTP client shared by authentication
// flows that call a remote identity-verification service.
//
// A Client is built once per process (see package clientmanager) and used
// by every concurrent authentication request. It enforces:
//   - A bounded pool: at most MaxTotalConnections leases overall and
//     MaxPerRouteConnections per scheme+host+port
//   - A pool acquisition timeout (ErrPoolTimeout when exceeded)
//   - Connect and read timeouts on every request
//   - No automatic redirect following unless configured, and never to a
//     relative Location unless that is configured too
//
// # Usage
//
//	client, err := httpclient.New(httpclient.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Do(req)
//	if err != nil {
//	    return err
//	}
//	defer resp.Body.Close()
//
// The response body holds a pool lease until it is closed or read to EOF.
// Callers that drop a body without closing it shrink the pool.
//
// # Defaults
//
// DefaultConfig returns 3000 ms connect, read and pool acquisition timeouts,
// 20 connections in total and per route, and redirects disabled.
//
// # Observability
//
// All requests emit structured logs via log/slog:
//   - Debug level: successful requests (status < 400)
//   - Warn level: failed requests (status >= 400, errors)
//   - Fields: method, url (sanitized), status, duration_ms, correlation_id, error
//
// Each request also gets an OpenTelemetry client span with W3C trace
// context injected, and Prometheus counters for requests, leases in use and
// acquisition timeouts.
package httpclient
