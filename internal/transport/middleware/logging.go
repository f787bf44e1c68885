package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/budget-ledger/pkg/logger"
)

const (
	// maxLoggedBody caps how much of a body is captured for the log line.
	maxLoggedBody = 4 << 10
	redacted      = "[FILTERED]"
)

// sensitiveKeys are matched as substrings of lower-cased header and JSON
// field names.
var sensitiveKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"cookie",
	"session",
	"credential",
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, key := range sensitiveKeys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs each request and response with credentials masked.
// Mount it after RequestID so lines carry the trace id.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lg := requestLogger(r, base)
			if reqID := chiMiddleware.GetReqID(r.Context()); reqID != "" {
				lg = lg.With("request_id", reqID)
			}

			reqBody := captureRequestBody(r)
			lg.InfoContext(r.Context(), "incoming request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Any("headers", redactHeaders(r.Header)),
				slog.String("body", redactBody(reqBody)),
			)

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			lg.Log(r.Context(), levelFor(rec.status), "response",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", rec.status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int("response_size", rec.size),
				slog.String("body", redactBody(rec.body.Bytes())),
			)
		})
	}
}

func requestLogger(r *http.Request, base *slog.Logger) *slog.Logger {
	if lg, ok := logger.Attached(r.Context()); ok {
		return lg
	}
	if base != nil {
		return base
	}
	return slog.Default()
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// captureRequestBody reads the body for logging and puts it back for the
// handler.
func captureRequestBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) > maxLoggedBody {
		return body[:maxLoggedBody]
	}
	return body
}

// recorder keeps the status and the first maxLoggedBody bytes written.
type recorder struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
	body        bytes.Buffer
}

func (rw *recorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.status = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		rw.body.Write(b[:min(room, len(b))])
	}
	rw.size += len(b)
	return rw.ResponseWriter.Write(b)
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		if isSensitive(string(body)) {
			return "[FILTERED - non-JSON body with sensitive content]"
		}
		return string(body)
	}

	masked, err := json.Marshal(redactValue(doc))
	if err != nil {
		return "[ERROR - failed to marshal filtered body]"
	}
	return string(masked)
}

func redactValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for key, inner := range val {
			if isSensitive(key) {
				val[key] = redacted
			} else {
				val[key] = redactValue(inner)
			}
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = redactValue(inner)
		}
		return val
	default:
		return v
	}
}
