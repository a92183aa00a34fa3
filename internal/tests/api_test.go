package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"planner/internal/app"
	"planner/internal/handler"
	"planner/internal/metrics"
	"planner/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	router     *gin.Engine
	drafts     *MockDraftStore
	locks      *MockLockStore
	plans      *MockPlanRepository
	processing *service.ProcessingService
}

func newAPIFixture() *apiFixture {
	registry := prometheus.NewRegistry()
	wizardMetrics := metrics.NewWizardMetrics(registry)

	f := &apiFixture{
		drafts: NewMockDraftStore(),
		locks:  NewMockLockStore(),
		plans:  NewMockPlanRepository(),
	}
	notifications := service.NewNotificationService()
	planService := service.NewPlanService(f.plans, notifications, wizardMetrics)
	f.processing = service.NewProcessingService(NewMockStatusStore(), planService, time.Millisecond)
	wizardService := service.NewWizardService(
		service.WizardServiceConfig{LockTTL: 5 * time.Second, IdleTTL: time.Hour},
		f.drafts,
		f.locks,
		notifications,
		f.processing,
		wizardMetrics,
	)

	f.router = app.NewRouter(app.RouterDeps{
		WizardHandler: handler.NewWizardHandler(wizardService, f.processing),
		PlanHandler:   handler.NewPlanHandler(planService),
		Gatherer:      registry,
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return v
}

// ──────────────────────────────────────────────
// HTTP API
// ──────────────────────────────────────────────

func TestAPI_OpenSession(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	w := f.do(t, http.MethodPost, "/v1/wizard/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	view := decode[service.ReadModel](t, w)
	if view.SessionID == "" || view.Step != 0 {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestAPI_NextWithEmptyBasicsReturnsValidationView(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	w := f.do(t, http.MethodPost, "/v1/wizard/sessions/"+testSessionID+"/next", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[handler.WizardErrorResponse](t, w)
	if resp.View == nil {
		t.Fatal("expected the view to be attached")
	}
	want := service.MsgSelectCheckIn + ". " + service.MsgSelectCheckOut + ". " + service.MsgEnterDeparture + "."
	if resp.View.LiveRegion != want {
		t.Errorf("expected live region %q, got %q", want, resp.View.LiveRegion)
	}
	if len(resp.View.Errors) != 3 {
		t.Errorf("expected 3 flagged fields, got %d", len(resp.View.Errors))
	}
}

func TestAPI_BadSessionID(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	w := f.do(t, http.MethodGet, "/v1/wizard/sessions/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAPI_InvalidInputIsBadRequest(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	base := "/v1/wizard/sessions/" + testSessionID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"bad currency", http.MethodPatch, base + "/draft", `{"currency":"GBP"}`},
		{"negative budget", http.MethodPatch, base + "/draft", `{"budget":-1}`},
		{"bad date", http.MethodPatch, base + "/draft", `{"startDate":"June 10"}`},
		{"unknown preference", http.MethodPut, base + "/preferences/shopping", `{"selected":true}`},
		{"bad level", http.MethodPut, base + "/preferences/culture", `{"level":"Extreme"}`},
		{"empty preference body", http.MethodPut, base + "/preferences/culture", `{}`},
		{"missing edit target", http.MethodPost, base + "/edit", `{}`},
		{"malformed body", http.MethodPatch, base + "/draft", `{`},
	}

	for _, tt := range tests {
		w := f.do(t, tt.method, tt.path, tt.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tt.name, w.Code, w.Body.String())
		}
	}
}

func TestAPI_FullWizardFlow(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	base := "/v1/wizard/sessions/" + testSessionID

	w := f.do(t, http.MethodPatch, base+"/draft", `{"budget":2000,"currency":"EUR","startDate":"2024-03-15","endDate":"2024-03-18","departure":"JFK"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update draft: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodPost, base+"/next", ""); w.Code != http.StatusOK {
		t.Fatalf("next: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodPut, base+"/preferences/culture", `{"selected":true,"level":"High"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("preference: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodPost, base+"/next", "")
	if w.Code != http.StatusOK {
		t.Fatalf("next: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	view := decode[service.ReadModel](t, w)
	if view.Summary.Budget != "€2,000" || view.Summary.Duration != "3 Days" {
		t.Errorf("unexpected summary %+v", view.Summary)
	}
	if len(view.Summary.Preferences) != 1 || view.Summary.Preferences[0].Text != "Cultural Experiences (High)" {
		t.Errorf("unexpected preferences %+v", view.Summary.Preferences)
	}

	if w := f.do(t, http.MethodPost, base+"/generate", ""); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("generate without terms: expected 422, got %d", w.Code)
	}
	if w := f.do(t, http.MethodPatch, base+"/draft", `{"termsAgreed":true}`); w.Code != http.StatusOK {
		t.Fatalf("terms: expected 200, got %d", w.Code)
	}

	w = f.do(t, http.MethodPost, base+"/generate", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("generate: expected 202, got %d: %s", w.Code, w.Body.String())
	}
	accepted := decode[struct {
		PlanID string            `json:"plan_id"`
		View   service.ReadModel `json:"view"`
	}](t, w)
	if accepted.PlanID == "" || !accepted.View.Completed {
		t.Fatalf("unexpected generate response %s", w.Body.String())
	}

	if w := f.do(t, http.MethodPost, base+"/back", ""); w.Code != http.StatusConflict {
		t.Errorf("back after generate: expected 409, got %d", w.Code)
	}

	f.processing.Wait()

	w = f.do(t, http.MethodGet, base+"/processing", "")
	if w.Code != http.StatusOK {
		t.Fatalf("processing: expected 200, got %d", w.Code)
	}
	status := decode[handler.ProcessingResponse](t, w)
	if !status.Done || status.PlanID != accepted.PlanID {
		t.Errorf("unexpected processing status %+v", status)
	}

	w = f.do(t, http.MethodGet, "/v1/plans/"+accepted.PlanID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get plan: expected 200, got %d", w.Code)
	}
	plan := decode[handler.PlanResponse](t, w)
	if plan.Status != "SUBMITTED" || plan.Request.Departure != "JFK" {
		t.Errorf("unexpected plan %+v", plan)
	}

	w = f.do(t, http.MethodGet, base+"/plans", "")
	if w.Code != http.StatusOK || len(decode[[]handler.PlanResponse](t, w)) != 1 {
		t.Errorf("expected 1 plan for the session, got %d: %s", w.Code, w.Body.String())
	}

	w = f.do(t, http.MethodGet, "/metrics", "")
	if !strings.Contains(w.Body.String(), "planner_wizard_plans_submitted_total") {
		t.Error("expected plan metrics to be exported")
	}

	if w := f.do(t, http.MethodDelete, base, ""); w.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodGet, base+"/processing", ""); w.Code != http.StatusNotFound {
		t.Errorf("processing after clear: expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAPI_PreferenceUpdateTakesLockOnce(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	base := "/v1/wizard/sessions/" + testSessionID

	before := atomic.LoadInt32(&f.locks.AcquireCallCount)
	w := f.do(t, http.MethodPut, base+"/preferences/nature", `{"selected":true,"level":"VeryHigh"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := atomic.LoadInt32(&f.locks.AcquireCallCount) - before; got != 1 {
		t.Errorf("expected 1 lock acquisition, got %d", got)
	}

	w = f.do(t, http.MethodPut, base+"/preferences/culture", `{"selected":true,"level":"Extreme"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	view := decode[service.ReadModel](t, f.do(t, http.MethodGet, base, ""))
	for _, toggle := range view.Draft.Preferences {
		switch toggle.Preference {
		case "nature":
			if !toggle.Selected || toggle.Level != "VeryHigh" {
				t.Errorf("expected nature selected at VeryHigh, got %+v", toggle)
			}
		case "culture":
			if toggle.Selected {
				t.Error("expected a rejected update to leave culture unchecked")
			}
		}
	}
}

func TestAPI_SaveFailureReturnsNotice(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	f.drafts.PutError = ErrMockQuota
	base := "/v1/wizard/sessions/" + testSessionID

	w := f.do(t, http.MethodPost, base+"/save", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[handler.WizardErrorResponse](t, w)
	if resp.View == nil || len(resp.View.Notices) != 1 {
		t.Fatalf("expected a notice in the view, got %s", w.Body.String())
	}

	body := `{"notice_id":"` + resp.View.Notices[0].ID + `"}`
	w = f.do(t, http.MethodPost, base+"/notices/dismiss", body)
	if w.Code != http.StatusOK {
		t.Fatalf("dismiss: expected 200, got %d", w.Code)
	}
	if view := decode[service.ReadModel](t, w); len(view.Notices) != 0 {
		t.Errorf("expected notice dismissed, got %+v", view.Notices)
	}
}

func TestAPI_ProcessingNotFoundBeforeGenerate(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	w := f.do(t, http.MethodGet, "/v1/wizard/sessions/"+testSessionID+"/processing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAPI_UnknownPlanIsNotFound(t *testing.T) {
	t.Parallel()

	f := newAPIFixture()
	w := f.do(t, http.MethodGet, "/v1/plans/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
