package serving

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
)

func newRouter(t *testing.T, svc *Service) *mux.Router {
	t.Helper()
	router := mux.NewRouter()
	NewHandler(svc).Register(router)
	return router
}

func TestAssessEndpoint(t *testing.T) {
	router := newRouter(t, newLinearService(t, "A"))

	body, _ := json.Marshal(FromProfile(risk.DefaultProfile()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assess", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.AssessmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RiskLevel != risk.LevelHigh || len(resp.Gauge.Steps) != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAssessEndpointErrors(t *testing.T) {
	router := newRouter(t, newLinearService(t, "A"))

	cases := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{name: "malformed json", body: `{"age":`, status: http.StatusBadRequest, kind: "validation"},
		{name: "unknown field", body: `{"age":45,"colour":"blue"}`, status: http.StatusBadRequest, kind: "validation"},
	}

	out := FromProfile(risk.DefaultProfile())
	out.Age = 17
	out.HeightM = 2.5
	payload, _ := json.Marshal(out)
	cases = append(cases, struct {
		name   string
		body   string
		status int
		kind   string
	}{name: "out of range", body: string(payload), status: http.StatusBadRequest, kind: "validation"})

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/assess", strings.NewReader(tc.body)))
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
		var resp models.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if resp.Error != tc.kind {
			t.Fatalf("%s: expected kind %s, got %s", tc.name, tc.kind, resp.Error)
		}
		if tc.name == "out of range" && len(resp.Fields) != 2 {
			t.Fatalf("expected both fields reported, got %+v", resp.Fields)
		}
	}
}

func TestStatusMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          risk.ValidationError{Fields: []risk.FieldError{{Field: "age", Reason: "x"}}},
		http.StatusServiceUnavailable:  risk.NewConfigurationError("no model"),
		http.StatusInternalServerError: risk.ErrNonFiniteResult,
	}
	for status, err := range cases {
		if got := statusFor(err); got != status {
			t.Fatalf("%v: expected %d, got %d", err, status, got)
		}
	}
}

func TestConfigAndBandSetEndpoints(t *testing.T) {
	router := newRouter(t, newLinearService(t, "B"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))
	var cfg models.ConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Strategy != risk.StrategyLinear || cfg.BandSet.Name != "B" || len(cfg.FeatureOrder) != len(risk.FeatureNames()) {
		t.Fatalf("unexpected config %+v", cfg)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/band-sets", nil))
	var list struct {
		Items []risk.BandSetSpec `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 built-in band sets, got %d", len(list.Items))
	}
}

func TestFormRendersDefaultsAndResult(t *testing.T) {
	router := newRouter(t, newLinearService(t, "A"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="age" min="18" max="100" value="45"`) {
		t.Fatalf("expected form with defaults, got %d", rec.Code)
	}

	req := FromProfile(risk.DefaultProfile())
	form := url.Values{
		"age":                    {"45"},
		"sex":                    {req.Sex},
		"weight_kg":              {"70"},
		"height_m":               {"1.7"},
		"systolic_bp":            {"120"},
		"diastolic_bp":           {"80"},
		"total_cholesterol":      {"190"},
		"hdl":                    {"45"},
		"ldl":                    {"130"},
		"fasting_blood_sugar":    {"90"},
		"waist_circumference_cm": {"90"},
		"smoker":                 {"No"},
		"diabetic":               {"No"},
		"family_history":         {"No"},
		"activity_level":         {"Low"},
	}
	post := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, post)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Risk level: HIGH") {
		t.Fatalf("expected HIGH result, got %d: %s", rec.Code, rec.Body.String())
	}

	form.Set("age", "old")
	post = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, post)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "age: must be a whole number") {
		t.Fatalf("expected field error, got %d", rec.Code)
	}
}
