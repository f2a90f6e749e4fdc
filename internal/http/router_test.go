package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vbc-hub/legis-gateway/internal/config"
	"github.com/vbc-hub/legis-gateway/internal/domain"
	"github.com/vbc-hub/legis-gateway/internal/legiscan"
)

// stubGateway satisfies handlers.Gateway with canned data; router tests only
// exercise wiring, not facade behavior.
type stubGateway struct{}

func (stubGateway) GetBill(context.Context, string) (*domain.Bill, error) {
	return &domain.Bill{BillID: 1234567, BillNumber: "HB2124"}, nil
}
func (stubGateway) GetBillText(context.Context, string) (*domain.BillText, error) {
	return &domain.BillText{}, nil
}
func (stubGateway) GetAmendment(context.Context, string) (*domain.Amendment, error) {
	return &domain.Amendment{}, nil
}
func (stubGateway) GetSupplement(context.Context, string) (*domain.Supplement, error) {
	return &domain.Supplement{}, nil
}
func (stubGateway) GetRollCall(context.Context, string) (*domain.RollCall, error) {
	return &domain.RollCall{}, nil
}
func (stubGateway) GetPerson(context.Context, string) (*domain.Person, error) {
	return &domain.Person{}, nil
}
func (stubGateway) GetSessionPeople(context.Context, string) (*domain.SessionPeople, error) {
	return &domain.SessionPeople{}, nil
}
func (stubGateway) GetSponsoredList(context.Context, string) (*domain.SponsoredList, error) {
	return &domain.SponsoredList{}, nil
}
func (stubGateway) Search(context.Context, string, string) (*domain.SearchResult, error) {
	return &domain.SearchResult{}, nil
}
func (stubGateway) GetMasterList(context.Context, string) (*domain.MasterList, error) {
	return &domain.MasterList{}, nil
}
func (stubGateway) GetMasterListRaw(context.Context, string) (*domain.MasterList, error) {
	return &domain.MasterList{}, nil
}
func (stubGateway) GetSessionList(context.Context) ([]domain.Session, error) {
	return []domain.Session{}, nil
}
func (stubGateway) GetBlockchainBills(context.Context) ([]domain.Bill, error) {
	return []domain.Bill{}, nil
}
func (stubGateway) DetectChangedBills(context.Context, int) ([]legiscan.ChangedBill, error) {
	return []legiscan.ChangedBill{}, nil
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   100,
		Security: config.SecurityConfig{
			EnableHSTS: false,
		},
	}
}

func newEngine(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, stubGateway{}, cfg)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r := newEngine(t, testConfig())
	w := get(r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Fatalf("health body unexpected: %s", w.Body.String())
	}
}

func TestRouter_Metrics(t *testing.T) {
	r := newEngine(t, testConfig())
	w := get(r, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
}

func TestRouter_BillRoute(t *testing.T) {
	r := newEngine(t, testConfig())
	w := get(r, "/api/v1/bills/1234567")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body = %s", w.Code, w.Body.String())
	}
	var b domain.Bill
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil || b.BillID != 1234567 {
		t.Fatalf("bill body unexpected: %s", w.Body.String())
	}
	// Correlation id is set by RequestID middleware.
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
}

func TestRouter_StaticAndParamRoutesCoexist(t *testing.T) {
	r := newEngine(t, testConfig())
	if w := get(r, "/api/v1/bills/blockchain"); w.Code != http.StatusOK {
		t.Fatalf("aggregate route status = %d", w.Code)
	}
	if w := get(r, "/api/v1/bills/42"); w.Code != http.StatusOK {
		t.Fatalf("detail route status = %d", w.Code)
	}
}

func TestRouter_NoRouteEnvelope(t *testing.T) {
	r := newEngine(t, testConfig())
	w := get(r, "/api/v1/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "not_found" {
		t.Fatalf("body unexpected: %s", w.Body.String())
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newEngine(t, testConfig())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRouter_CORSDefaultAllowsAll(t *testing.T) {
	r := newEngine(t, testConfig())
	w := get(r, "/health")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("ACAO = %q; want *", got)
	}
}

func TestRouter_CORSAllowlistEchoesOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"https://hub.example.org"}
	r := newEngine(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://hub.example.org")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://hub.example.org" {
		t.Fatalf("ACAO = %q", got)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.Header.Set("Origin", "https://evil.example.org")
	r.ServeHTTP(w2, req2)
	if got := w2.Header().Get("Access-Control-Allow-Origin"); got == "https://evil.example.org" {
		t.Fatalf("disallowed origin echoed")
	}
}

func TestRouter_RateLimiterCaps(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 1
	cfg.RateBurst = 1
	r := newEngine(t, cfg)

	if w := get(r, "/health"); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	start := time.Now()
	w := get(r, "/health")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d; want 429 (elapsed %v)", w.Code, time.Since(start))
	}
}
