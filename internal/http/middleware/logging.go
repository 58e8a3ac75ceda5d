package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sprinkle-fairydust/site-api/internal/auth"
	"go.uber.org/zap"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logging assigns a request id and logs each request. An inbound
// X-Request-ID from the edge proxy is kept so logs can be joined. Server
// errors log at warn; the open pixel and page-view beacons log at debug
// because mail proxies and browsers send them in bulk.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := inboundRequestID(r.Header.Get("X-Request-ID"))

			r.Header.Set("X-Request-ID", requestID)
			w.Header().Set("X-Request-ID", requestID)

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			// Signed link tokens stay out of the logs, so only the path is recorded
			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("client_ip", ClientIP(r)),
				zap.Int("status_code", rw.statusCode),
				zap.Int64("response_size", rw.written),
				zap.Duration("duration", duration),
			}

			if admin, ok := auth.FromContext(r.Context()); ok {
				fields = append(fields,
					zap.String("admin_subject", admin.Subject),
					zap.String("auth_type", string(admin.Method)),
				)
			}

			msg := fmt.Sprintf("%s %-30s -> %3d (%s)",
				r.Method,
				r.URL.Path,
				rw.statusCode,
				duration.Truncate(time.Microsecond),
			)
			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				logger.Warn(msg, fields...)
			case isBeacon(r.URL.Path) && rw.statusCode < http.StatusBadRequest:
				logger.Debug(msg, fields...)
			default:
				logger.Info(msg, fields...)
			}
		})
	}
}

// inboundRequestID keeps a well-formed proxy request id, otherwise mints one
func inboundRequestID(value string) string {
	value = strings.TrimSpace(value)
	if value != "" && len(value) <= 64 && requestIDPattern.MatchString(value) {
		return value
	}
	return uuid.New().String()
}

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func isBeacon(path string) bool {
	return path == "/api/tracking/page-views" ||
		(strings.HasPrefix(path, "/quotes/") && strings.HasSuffix(path, "/open"))
}
