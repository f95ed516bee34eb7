package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"LimesMS/internal/domain/models"
	"LimesMS/internal/repository"
	"LimesMS/internal/services/signal"
	"LimesMS/internal/usecase"
	pkgcache "LimesMS/pkg/cache"
)

func writeDaily(t *testing.T, dir, slug string, closes []float64) {
	t.Helper()
	rows := make([]string, len(closes))
	for i, c := range closes {
		rows[i] = fmt.Sprintf(`{"time":"2025-01-%02dT00:00:00Z","close":%g}`, i+1, c)
	}
	doc := `{"symbol":"` + strings.ToUpper(slug) + `","ref_th":"ref","rows":[` + strings.Join(rows, ",") + `]}`
	if err := os.WriteFile(filepath.Join(dir, slug+"_daily.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	writeDaily(t, dir, "spy", closes)
	writeDaily(t, dir, "tiny", closes[:3])

	reg, err := signal.NewRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	catalog, _ := repository.ParseAssetCatalog([]byte(`{"tickers":["SPY","SPYG","TINY"]}`))
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	svc := usecase.NewSignalService(usecase.SignalServiceDeps{
		Series:    repository.NewFileSeriesStore(dir, repository.NewSeriesNaming("15m", nil), nil),
		Overrides: repository.NewCacheOverrideStore(mem, 0),
		History:   repository.NewMemorySignalHistory(10),
		Catalog:   catalog,
		Profiles:  reg,
	})
	e := echo.New()
	NewSignalsEchoHandler(nil, svc).RegisterRoutes(e)
	return e
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid body %q", method, target, rec.Body.String())
		}
	}
	return rec.Code, env
}

func TestSignalEndpoint(t *testing.T) {
	e := newTestServer(t)

	code, env := do(t, e, http.MethodGet, "/api/signal?symbol=spy&chart=true", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var res models.Result
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Status != models.OutcomeOK || res.Signal.Advice != models.AdviceBuy || len(res.Signal.Chart) != 25 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Signal.Reference != "ref" || len(res.Signal.MonitorRows) != 5 {
		t.Fatalf("unexpected signal %+v", res.Signal)
	}

	code, env = do(t, e, http.MethodGet, "/api/signal?symbol=tiny", "")
	if err := json.Unmarshal(env.Data, &res); err != nil || code != http.StatusOK || res.Status != models.OutcomeInsufficientData {
		t.Fatalf("insufficient data is a 200 result, got %d %+v", code, res)
	}
}

func TestSignalEndpointErrors(t *testing.T) {
	e := newTestServer(t)
	cases := []struct {
		target string
		want   int
	}{
		{"/api/signal", http.StatusBadRequest},
		{"/api/signal?symbol=spy&human=abc", http.StatusBadRequest},
		{"/api/signal?symbol=spy&human=9", http.StatusBadRequest},
		{"/api/signal?symbol=spy&profile=nope", http.StatusBadRequest},
		{"/api/signal?symbol=qqq", http.StatusNotFound},
		{"/api/signal/history", http.StatusBadRequest},
		{"/api/signal/history?symbol=spy&limit=9999", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if code, _ := do(t, e, http.MethodGet, tc.target, ""); code != tc.want {
			t.Errorf("GET %s: expected %d, got %d", tc.target, tc.want, code)
		}
	}
}

func TestOverrideLifecycle(t *testing.T) {
	e := newTestServer(t)

	if code, _ := do(t, e, http.MethodGet, "/api/override?client=c1", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 before set, got %d", code)
	}
	if code, _ := do(t, e, http.MethodPut, "/api/override?client=c1", `{"value":5}`); code != http.StatusOK {
		t.Fatalf("expected 200 on put, got %d", code)
	}
	if code, _ := do(t, e, http.MethodPut, "/api/override", `{"client":"c1","value":6}`); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range value, got %d", code)
	}

	code, env := do(t, e, http.MethodGet, "/api/signal?symbol=spy&client=c1", "")
	var res models.Result
	_ = json.Unmarshal(env.Data, &res)
	if code != http.StatusOK || res.Signal.HumanOverride == nil || res.Signal.Advice != models.AdviceHold {
		t.Fatalf("expected stored override applied, got %d %+v", code, res.Signal)
	}

	if code, _ := do(t, e, http.MethodDelete, "/api/override?client=c1", ""); code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", code)
	}
	if code, _ := do(t, e, http.MethodDelete, "/api/override?client=c1", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", code)
	}
}

func TestListEndpoints(t *testing.T) {
	e := newTestServer(t)
	_, _ = do(t, e, http.MethodGet, "/api/signal?symbol=SPY", "")

	var list struct {
		Rows  json.RawMessage `json:"rows"`
		Total int64           `json:"total"`
	}

	code, env := do(t, e, http.MethodGet, "/api/signal/history?symbol=spy", "")
	_ = json.Unmarshal(env.Data, &list)
	if code != http.StatusOK || list.Total != 1 {
		t.Fatalf("expected one history record, got %d %s", code, env.Data)
	}

	code, env = do(t, e, http.MethodGet, "/api/assets?q=sp", "")
	_ = json.Unmarshal(env.Data, &list)
	if code != http.StatusOK || list.Total != 2 {
		t.Fatalf("expected two assets, got %d %s", code, env.Data)
	}

	code, env = do(t, e, http.MethodGet, "/api/profiles", "")
	var profiles struct {
		Rows []struct {
			Name             string `json:"name"`
			Default          bool   `json:"default"`
			BandWindow       int    `json:"band_window"`
			IntradayInterval string `json:"intraday_interval"`
		} `json:"rows"`
	}
	_ = json.Unmarshal(env.Data, &profiles)
	if code != http.StatusOK || len(profiles.Rows) != 3 {
		t.Fatalf("expected three profiles, got %d %s", code, env.Data)
	}
	p := profiles.Rows[1] // alphabetical: conservative, intraday, standard
	if p.Name != "intraday" || p.BandWindow != 20 || p.IntradayInterval != "15m0s" || p.Default {
		t.Fatalf("unexpected intraday profile %+v", p)
	}
	if !profiles.Rows[2].Default {
		t.Fatal("standard must be flagged default")
	}

	if code, _ := do(t, e, http.MethodGet, "/healthz", ""); code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", code)
	}
}
