package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/logger"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/middleware/metrics"
	"github.com/a2z-dev/a2z/shared/syslog"
	"github.com/a2z-dev/a2z/shared/utils"
)

const msgCrashed = "Something went wrong. Our team has been notified."

type ErrorLogger interface {
	LogError(ctx context.Context, r syslog.Report) string
}

// ReportPanics turns a panic into a stored log entry and a 500 response carrying its ticket id.
func ReportPanics(reporter ErrorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				report := ReportFromRequest(r)
				report.Message = fmt.Sprint(rec)
				report.Stack = string(debug.Stack())
				report.Type = "panic"

				refId := reporter.LogError(context.WithoutCancel(r.Context()), report)
				metrics.ErrorReported()
				logger.Log.Error("handler panicked", "path", r.URL.Path, "ref_id", refId, "panic", report.Message)

				utils.WriteJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: msgCrashed, RefId: refId})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ReportFromRequest fills the request-derived fields of a report.
func ReportFromRequest(r *http.Request) syslog.Report {
	report := syslog.Report{
		URL:       r.URL.String(),
		UserAgent: r.UserAgent(),
	}
	if s := mw.GetSessionFromContext(r); s != nil {
		report.UserId = s.IdentityId
		report.UserEmail = s.Email
	}
	return report
}
