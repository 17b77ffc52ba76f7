package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"contact-book/models"
	"contact-book/services"

	"github.com/gorilla/mux"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// requestInfo is filled in while the request travels through the router so the
// access log, which wraps the router, can see the matched route and the user.
type requestInfo struct {
	route string
	user  *models.User
}

type requestInfoKey struct{}

func requestInfoFrom(r *http.Request) *requestInfo {
	info, _ := r.Context().Value(requestInfoKey{}).(*requestInfo)
	return info
}

// RouteTag records the matched mux route name for the access log
func RouteTag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info := requestInfoFrom(r); info != nil {
			if route := mux.CurrentRoute(r); route != nil {
				info.route = route.GetName()
			}
		}
		next.ServeHTTP(w, r)
	})
}

// logRequest logs with the route name, method, path and the authenticated user if any.
// level is one of "info", "error" or "debug".
func logRequest(r *http.Request, level string, message string, fields ...zap.Field) {
	routeName := ""
	user := UserFromContext(r.Context())
	if route := mux.CurrentRoute(r); route != nil {
		routeName = route.GetName()
	} else if info := requestInfoFrom(r); info != nil {
		// outside the router: the access log
		routeName = info.route
		user = info.user
	}
	method := r.Method
	path := r.URL.Path

	logMsg := time.Now().Format("2006-01-02 15:04:05") + " - " + routeName + " - " + method + " - " + path
	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", method),
		zap.String("path", path),
	}, fields...)

	if user != nil {
		logMsg += " - user:" + user.Username
		allFields = append(allFields, zap.Int64("user_id", user.ID))
	}
	if message != "" {
		logMsg += " - " + message
	}

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

// writeJSON writes v as the JSON response body with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// serverError logs err and answers with a plain 500
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	logRequest(r, "error", "Request failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// validationMessage turns a wrapped services.ErrValidation into a message for the user,
// e.g. "Username is required"
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// responseRecorder captures the status and size written by the wrapped handler
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *responseRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// AccessLog logs every request once it completes, including 404 and 405 answers.
// It wraps the whole router; RouteTag and the session gate report back through the request context.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, &requestInfo{}))

		next.ServeHTTP(rec, r)

		logRequest(r, "info", "Request completed",
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "contact-book"})
}
