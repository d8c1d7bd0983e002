package serving

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/observability/metrics"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

//go:embed templates/index.html
var templateFS embed.FS

var page = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"pct": func(v float64) float64 { return v * 100 },
}).ParseFS(templateFS, "templates/index.html"))

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/assess", h.handleAssess).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/config", h.handleConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/band-sets", h.handleBandSets).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleForm).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleFormSubmit).Methods(http.MethodPost)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"strategy": h.service.Scorer().Strategy(),
	})
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req models.AssessmentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation",
			Message: fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}
	resp, err := h.service.Evaluate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Config())
}

func (h *Handler) handleBandSets(w http.ResponseWriter, r *http.Request) {
	sets := h.service.Registry().All()
	specs := make([]risk.BandSetSpec, 0, len(sets))
	for _, set := range sets {
		specs = append(specs, set.Spec())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": specs})
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.newView(FromProfile(risk.DefaultProfile())))
}

func (h *Handler) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req, err := RequestFromForm(r.PostForm)
	view := h.newView(req)
	if err == nil {
		var resp models.AssessmentResponse
		resp, err = h.service.Evaluate(r.Context(), req)
		if err == nil {
			view.setResult(resp)
			h.render(w, http.StatusOK, view)
			return
		}
	}
	view.setError(err)
	h.render(w, statusFor(err), view)
}

func (h *Handler) render(w http.ResponseWriter, status int, view *formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, view); err != nil {
		logger.Log.WithError(err).Error("failed to render form")
	}
}

type formView struct {
	Strategy    string
	BandSet     string
	Request     models.AssessmentRequest
	Result      *models.AssessmentResponse
	Error       string
	Fields      []risk.FieldError
	Segments    []template.CSS
	BarStyle    template.CSS
	NeedleStyle template.CSS
	Sexes       []string
	Activities  []string
	YesNo       []string
}

func (h *Handler) newView(req models.AssessmentRequest) *formView {
	scorer := h.service.Scorer()
	return &formView{
		Strategy:   scorer.Strategy(),
		BandSet:    scorer.BandSet().ID(),
		Request:    req,
		Sexes:      []string{string(risk.SexMale), string(risk.SexFemale)},
		Activities: []string{string(risk.ActivityLow), string(risk.ActivityModerate), string(risk.ActivityHigh)},
		YesNo:      []string{"No", "Yes"},
	}
}

func (v *formView) setResult(resp models.AssessmentResponse) {
	v.Result = &resp
	g := resp.Gauge
	span := g.Max - g.Min
	if span <= 0 {
		return
	}
	for _, step := range g.Steps {
		left := (step.From - g.Min) / span * 100
		width := (step.To - step.From) / span * 100
		v.Segments = append(v.Segments, template.CSS(fmt.Sprintf("left: %.2f%%; width: %.2f%%; background: %s;", left, width, step.Color)))
	}
	needle := g.Percent() * 100
	v.BarStyle = template.CSS(fmt.Sprintf("width: %.2f%%; background: %s;", needle, g.BarColor))
	v.NeedleStyle = template.CSS(fmt.Sprintf("left: %.2f%%;", needle))
}

func (v *formView) setError(err error) {
	var ve risk.ValidationError
	if errors.As(err, &ve) {
		v.Error = "Please correct the highlighted fields."
		v.Fields = ve.Fields
		return
	}
	v.Error = messageFor(err)
}

func statusFor(err error) int {
	switch risk.ErrorKind(err) {
	case "validation":
		return http.StatusBadRequest
	case "configuration":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor keeps internal error details out of responses.
func messageFor(err error) string {
	switch risk.ErrorKind(err) {
	case "validation":
		return err.Error()
	case "configuration":
		return "the risk model is not available"
	case "computation":
		return "the risk score could not be computed for this profile"
	default:
		return "internal error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := models.ErrorResponse{Error: risk.ErrorKind(err), Message: messageFor(err)}
	var ve risk.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	writeJSON(w, statusFor(err), resp)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
