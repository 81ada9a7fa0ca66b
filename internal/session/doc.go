// Package session models the per-connection lifecycle of the HTTP server.
//
// Every inbound request (or SSE stream) gets its own Session. A session
// moves through Idle, Bound, Serving and Closed, and is released exactly
// once regardless of whether the request completed or the peer went away.
// Sessions are never shared between connections.
//
// The Tracker opens sessions, counts the live ones and is the single place
// where releases are observed:
//
//	tracker := session.NewTracker(log, gen)
//	s := tracker.Open(session.ModeBuffered)
//	defer s.Close()
//	_ = s.Serve()
package session
