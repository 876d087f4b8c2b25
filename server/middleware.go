package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Irisfrogy/data-visulization/utils"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestLog tags each request with an id (kept from the client when it
// is a valid UUID) and logs it once served.
func withRequestLog(next http.Handler, logger *utils.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		if rec.status >= http.StatusInternalServerError {
			logger.Warn("[http] %s %s → %d in %v (id=%s)", r.Method, r.URL.RequestURI(), rec.status, time.Since(start), id)
			return
		}
		logger.Debug("[http] %s %s → %d in %v (id=%s)", r.Method, r.URL.RequestURI(), rec.status, time.Since(start), id)
	})
}
