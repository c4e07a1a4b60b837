package rpc

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id back to the client, so a failed
// submission can be matched with the server log line
const RequestIDHeader = "X-Request-Id"

// probe endpoints are logged at debug level to keep orchestrator polling out of the log
var probePaths = map[string]bool{
	"/server/health": true,
	"/server/ready":  true,
}

// corsAllowedHeaders are what the web client sends: Connect unary JSON calls and the submit form
var corsAllowedHeaders = []string{
	"Accept-Encoding",
	"Connect-Protocol-Version",
	"Connect-Timeout-Ms",
	"Content-Encoding",
	"Content-Type",
	RequestIDHeader,
}

var corsExposedHeaders = []string{
	"Content-Encoding",
	RequestIDHeader,
}

// requestLogger logs every request with its request id, and the procedure for Connect calls.
// It must run after middleware.RequestID and realIPMiddleware.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set(RequestIDHeader, requestID)
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = Logger.Error()
		case status >= http.StatusBadRequest:
			event = Logger.Warn()
		case probePaths[r.URL.Path]:
			event = Logger.Debug()
		default:
			event = Logger.Info()
		}

		if procedure, ok := strings.CutPrefix(r.URL.Path, "/"+PortalServiceName+"/"); ok {
			event = event.Str("procedure", procedure)
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Str("request_id", requestID).
			Msg("request")
	})
}

// realIPMiddleware prefers the Cloudflare header, then X-Real-IP, then the first X-Forwarded-For hop.
// Values that are not IP addresses are ignored.
func realIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r.Header); ip != "" {
			r.RemoteAddr = ip
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(header http.Header) string {
	candidates := []string{header.Get("CF-Connecting-IP"), header.Get("X-Real-IP")}
	if xff := header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		candidates = append(candidates, first)
	}
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	return ""
}

// portalRecoverer turns a panic in a plain HTTP route into a JSON 500.
// Connect procedures recover through connect.WithRecover instead.
func portalRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				Logger.Error().
					Interface("panic", rvr).
					Str("path", r.URL.Path).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("Recovered from panic")

				writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
					Error: http.StatusText(http.StatusInternalServerError),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func newCORSHandler(allowedOrigins []string, next http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// wildcard origins cannot be combined with credentials
	allowCredentials := !(len(allowedOrigins) == 1 && allowedOrigins[0] == "*")

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   corsAllowedHeaders,
		ExposedHeaders:   corsExposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           int(2 * time.Hour / time.Second),
	}).Handler(next)
}

// loggingInterceptor logs Connect calls with their outcome code.
// Rejected input and unknown sessions are client mistakes and logged as warnings.
func loggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			event := Logger.Debug()
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
				switch connect.CodeOf(err) {
				case connect.CodeInvalidArgument, connect.CodeNotFound:
					event = Logger.Warn().Err(err)
				default:
					event = Logger.Error().Err(err)
				}
			}

			event.
				Str("procedure", strings.TrimPrefix(req.Spec().Procedure, "/"+PortalServiceName+"/")).
				Str("code", code).
				Str("protocol", req.Peer().Protocol).
				Dur("duration", time.Since(start)).
				Msg("rpc")

			return resp, err
		}
	}
}

// noCacheInterceptor keeps session dependent answers out of browser and CDN caches
func noCacheInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			resp, err := next(ctx, req)
			if err == nil && resp != nil {
				resp.Header().Set("Cache-Control", "no-store")
			}
			return resp, err
		}
	}
}
