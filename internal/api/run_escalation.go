package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"audittrack/escalation-runner/internal/escalation"
)

// Runner executes one escalation pass.
type Runner interface {
	Run(ctx context.Context) (escalation.Summary, error)
}

// RunEscalationHandler triggers a single escalation pass over all
// overdue findings. The request needs no body; the response is the
// pass summary.
func RunEscalationHandler(runner Runner, timeout time.Duration, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		sum, err := runner.Run(ctx)
		if err != nil {
			log.Error("escalation pass failed", zap.Error(err))
			render.Status(r, 500)
			render.JSON(w, r, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
			return
		}

		if sum.TotalOverdue == 0 {
			render.JSON(w, r, map[string]any{
				"success":   true,
				"message":   "No overdue findings found",
				"processed": 0,
			})
			return
		}

		render.JSON(w, r, map[string]any{
			"success":          true,
			"processed":        sum.Processed,
			"escalations_sent": sum.EscalationsSent,
			"total_overdue":    sum.TotalOverdue,
		})
	}
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
