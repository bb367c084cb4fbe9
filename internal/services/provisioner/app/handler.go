// Package app exposes the provisioning workflow over a single JSON
// endpoint with action dispatch.
package app

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/louisbranch/workroom.space/internal/platform/errors"
	"github.com/louisbranch/workroom.space/internal/platform/id"
	"github.com/louisbranch/workroom.space/internal/platform/requestctx"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
)

// traceHeader opts a single request into verbose step logging.
const traceHeader = "X-Debug-Trace"

const (
	actionHealthCheck  = "health-check"
	actionProjectStart = "project-start"
	actionUserSwap     = "user-swap"
)

// Handler routes action requests into the domain service.
type Handler struct {
	service *domain.Service
	clock   func() time.Time
	newID   func() (string, error)
	logf    func(format string, args ...any)
}

// NewHandler builds the HTTP handler around the provisioning service.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{
		service: service,
		clock:   time.Now,
		newID:   id.NewID,
		logf:    log.Printf,
	}
}

// Routes builds the chi router: one POST endpoint plus its CORS preflight.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(corsHeaders)
	r.Post("/", h.handleAction)
	r.Options("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+traceHeader)
		next.ServeHTTP(w, r)
	})
}

type actionRequest struct {
	Action       string         `json:"action"`
	ProjectID    string         `json:"projectId"`
	ProjectTitle string         `json:"projectTitle"`
	KickoffAt    *time.Time     `json:"kickoffAt"`
	Members      *rosterPayload `json:"members"`

	From string `json:"from"`
	To   string `json:"to"`
	Role string `json:"role"`
}

type rosterPayload struct {
	Client    []string `json:"client"`
	Resources []string `json:"resources"`
}

type workspacePayload struct {
	FilesURL    string  `json:"filesUrl"`
	ChatURL     *string `json:"chatUrl"`
	CalendarURL *string `json:"calendarUrl"`
	BoardURL    *string `json:"boardUrl"`
}

type actionResponse struct {
	OK            bool              `json:"ok"`
	TS            string            `json:"ts,omitempty"`
	Nextcloud     *workspacePayload `json:"nextcloud,omitempty"`
	Code          string            `json:"code,omitempty"`
	Hint          string            `json:"hint,omitempty"`
	CorrelationID string            `json:"correlationId"`
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	correlationID, err := h.newID()
	if err != nil {
		h.logf("provisioner: generate correlation id: %v", err)
	}
	ctx := requestctx.WithCorrelationID(r.Context(), correlationID)
	if r.Header.Get(traceHeader) == "1" {
		ctx = requestctx.WithTraceEnabled(ctx, true)
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, correlationID,
			apperrors.New(apperrors.CodeInvalidJSON, "request body is not valid JSON"))
		return
	}

	switch req.Action {
	case actionHealthCheck:
		h.writeJSON(w, http.StatusOK, actionResponse{
			OK:            true,
			TS:            h.clock().UTC().Format(time.RFC3339),
			CorrelationID: correlationID,
		})

	case actionProjectStart:
		workspace, err := h.service.Provision(ctx, provisionRequest(req))
		if err != nil {
			h.logf("provisioner: project-start failed: correlation=%s err=%v", correlationID, err)
			h.writeError(w, correlationID, err)
			return
		}
		h.writeJSON(w, http.StatusOK, actionResponse{
			OK: true,
			Nextcloud: &workspacePayload{
				FilesURL:    workspace.FilesURL,
				ChatURL:     nullable(workspace.ChatURL),
				CalendarURL: nullable(workspace.CalendarURL),
				BoardURL:    nullable(workspace.BoardURL),
			},
			CorrelationID: correlationID,
		})

	case actionUserSwap:
		role, ok := domain.ParseRole(req.Role)
		if !ok {
			h.writeError(w, correlationID,
				apperrors.New(apperrors.CodeInvalidInput, "role must be client or resource"))
			return
		}
		if err := h.service.SwapMember(ctx, req.ProjectID, req.From, req.To, role); err != nil {
			h.logf("provisioner: user-swap failed: correlation=%s err=%v", correlationID, err)
			h.writeError(w, correlationID, err)
			return
		}
		h.writeJSON(w, http.StatusOK, actionResponse{OK: true, CorrelationID: correlationID})

	default:
		h.writeError(w, correlationID,
			apperrors.New(apperrors.CodeUnknownAction, "unknown action "+req.Action))
	}
}

func provisionRequest(req actionRequest) domain.ProvisionRequest {
	out := domain.ProvisionRequest{
		ProjectID:    req.ProjectID,
		ProjectTitle: req.ProjectTitle,
		KickoffAt:    req.KickoffAt,
	}
	if req.Members != nil {
		out.Members = &domain.MemberRoster{
			Client:    req.Members.Client,
			Resources: req.Members.Resources,
		}
	}
	return out
}

func (h *Handler) writeError(w http.ResponseWriter, correlationID string, err error) {
	code := apperrors.CodeOf(err)
	h.writeJSON(w, code.HTTPStatus(), actionResponse{
		OK:            false,
		Code:          string(code),
		Hint:          hintFor(err),
		CorrelationID: correlationID,
	})
}

// hintFor exposes the curated message of a domain error. Wrapped causes
// stay in the logs.
func hintFor(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "unexpected error"
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body actionResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logf("provisioner: encode response: %v", err)
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
