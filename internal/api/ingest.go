package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"audittrack/escalation-runner/internal/model"
	"audittrack/escalation-runner/internal/security"
)

// FindingWriter persists new findings.
type FindingWriter interface {
	CreateFinding(ctx context.Context, f model.Finding) error
}

// IngestHandler accepts a batch of findings, typically pushed by an
// inspection import job, and persists them.
func IngestHandler(findings FindingWriter, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Findings []model.Finding `json:"findings"`
		}

		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, map[string]string{"error": "invalid json"})
			return
		}

		// No trust boundary crossing without validation
		for _, f := range payload.Findings {
			if err := security.ValidateFinding(f); err != nil {
				render.Status(r, 400)
				render.JSON(w, r, map[string]string{"error": err.Error()})
				return
			}
		}

		accepted := 0
		for _, f := range payload.Findings {
			if err := findings.CreateFinding(r.Context(), f); err != nil {
				log.Error("ingesting finding",
					zap.String("title", f.Title),
					zap.Error(err))
				continue
			}
			accepted++
		}

		render.Status(r, 202)
		render.JSON(w, r, map[string]any{"accepted": accepted})
	}
}
