package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"github.com/felixge/httpsnoop"

	"github.com/wagiedev/project-tools-mcp/internal/metrics"
	"github.com/wagiedev/project-tools-mcp/internal/session"
)

// internalErrorBody is the response for failures before anything was sent.
var internalErrorBody = map[string]string{"error": "Internal MCP server error"}

// lifecycle binds a fresh session to every request and releases it exactly
// once, on return or when the peer goes away. Panics are recovered: before
// the response is committed the client gets a 500, afterwards the failure
// is only logged.
func lifecycle(
	log *slog.Logger,
	tracker *session.Tracker,
	m *metrics.Metrics,
	modeOf func(*http.Request) session.Mode,
) func(http.Handler) http.Handler {
	log = log.With("component", "lifecycle")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := tracker.Open(modeOf(r))

			stop := context.AfterFunc(r.Context(), func() {
				if sess.Close() {
					log.Debug("Peer disconnected", "session", sess.ID(), "mode", sess.Mode())
				}
			})

			defer func() {
				stop()
				sess.Close()
			}()

			var committed atomic.Bool

			ww := httpsnoop.Wrap(w, httpsnoop.Hooks{
				WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						committed.Store(true)
						next(code)
					}
				},
				Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
					return func(b []byte) (int, error) {
						committed.Store(true)
						return next(b)
					}
				},
				Flush: func(next httpsnoop.FlushFunc) httpsnoop.FlushFunc {
					return func() {
						committed.Store(true)
						next()
					}
				},
				ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
					return func(src io.Reader) (int64, error) {
						committed.Store(true)
						return next(src)
					}
				},
			})

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				m.InternalError("panic")

				if committed.Load() {
					log.Error("Failure after response was committed",
						"session", sess.ID(), "panic", rec, "stack", string(debug.Stack()))

					return
				}

				log.Error("Unhandled failure serving MCP request",
					"session", sess.ID(), "panic", rec, "stack", string(debug.Stack()))
				writeJSON(w, http.StatusInternalServerError, internalErrorBody)
			}()

			if err := sess.Serve(); err != nil {
				log.Debug("Session closed before serving", "session", sess.ID(), "error", err)
				return
			}

			next.ServeHTTP(ww, r.WithContext(session.NewContext(r.Context(), sess)))
		})
	}
}
