package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

func addMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	for _, m := range []func(http.Handler) http.Handler{
		recoverHandler,
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			log := zerolog.Ctx(r.Context())

			var evt *zerolog.Event
			switch {
			case status >= 500 && status <= 599:
				evt = log.Error()
			case r.URL.Path == "/health/check" || r.URL.Path == "/health/infos":
				// Health endpoints are polled constantly; a failing
				// dependency is already logged by the aggregator.
				evt = log.Debug()
			default:
				evt = log.Info()
			}

			evt.Int("http.status_code", status).
				Int64("duration_ms", duration.Milliseconds()).
				Int("http.response.content_length", size).
				Msg("http request")
		}),
		hlog.URLHandler("http.url"),
		hlog.MethodHandler("http.method"),
		hlog.RemoteIPHandler("http.client_ip"),
		hlog.UserAgentHandler("http.useragent"),
		hlog.NewHandler(logger),
	} {
		next = m(next)
	}

	return next
}

func recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zerolog.Ctx(r.Context()).Error().
					Interface("panic", rec).
					Str("http.url", r.URL.Path).
					Msg("panic while handling request")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
