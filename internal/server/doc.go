// Package server provides HTTP routing, middleware and server lifecycle for the web front-end.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
//   - [RequestLogger] writes a structured log line per request
//   - [Recoverer] converts handler panics into 500 responses
//   - [RateLimit] sheds load with 429 responses using a shared token bucket
//
// # Lifecycle
//
// [Server] wraps [http.Server]. [Server.Serve] blocks until its context is canceled (typically by
// signal.NotifyContext in the serve command) and then shuts down gracefully.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
