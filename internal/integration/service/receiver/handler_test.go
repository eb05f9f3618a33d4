package receiver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/model"
)

type fakeProcessor struct {
	mu    sync.Mutex
	downs []*model.AlertEvent
	ups   []*model.AlertEvent
}

func (f *fakeProcessor) HandleDown(ctx context.Context, ev *model.AlertEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downs = append(f.downs, ev)
}

func (f *fakeProcessor) HandleUp(ctx context.Context, ev *model.AlertEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ups = append(f.ups, ev)
}

func newWebhookRouter(proc AlertProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterReceiverRoutes(router, NewHandler(proc))
	return router
}

func postAlert(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/integrations/statuscake/webhook",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func alertForm(testID, status string) url.Values {
	return url.Values{
		"TestID":     {testID},
		"Name":       {"Acme-WebSite"},
		"Method":     {"Website"},
		"Status":     {status},
		"StatusCode": {"502"},
		"URL":        {"https://acme.example"},
		"Tags":       {"Company:Acme,Device:fw01"},
	}
}

func TestWebhookDispatchesDown(t *testing.T) {
	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	w := postAlert(router, alertForm("down-1", "Down"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(proc.downs) != 1 || len(proc.ups) != 0 {
		t.Fatalf("downs/ups = %d/%d, want 1/0", len(proc.downs), len(proc.ups))
	}
	ev := proc.downs[0]
	if ev.TestID != "down-1" || len(ev.Tags) != 2 || ev.Tags[1] != "Device:fw01" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if !strings.Contains(w.Body.String(), "Test: 'Acme-WebSite' was triggered. Status: Down(502)") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestWebhookDispatchesUp(t *testing.T) {
	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	w := postAlert(router, alertForm("up-1", "Up"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(proc.ups) != 1 || len(proc.downs) != 0 {
		t.Errorf("downs/ups = %d/%d, want 0/1", len(proc.downs), len(proc.ups))
	}
}

func TestWebhookRejectsNonWebsiteMethod(t *testing.T) {
	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	form := alertForm("ping-1", "Down")
	form.Set("Method", "Ping")
	w := postAlert(router, form)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if w.Body.String() != "Method is not a website uptime. Exiting..." {
		t.Errorf("body = %q", w.Body.String())
	}
	if len(proc.downs) != 0 || len(proc.ups) != 0 {
		t.Error("no processing expected for non-website methods")
	}
}

func TestWebhookFlapDispatchesEachTransition(t *testing.T) {
	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	// a down/up/down flap inside the dedup window: the second outage carries
	// the same status and status code but must still open a ticket
	postAlert(router, alertForm("flap-1", "Down"))
	up := alertForm("flap-1", "Up")
	up.Set("StatusCode", "200")
	postAlert(router, up)
	postAlert(router, alertForm("flap-1", "Down"))

	if len(proc.downs) != 2 {
		t.Errorf("downs = %d, want 2 (second outage must not be deduped)", len(proc.downs))
	}
	if len(proc.ups) != 1 {
		t.Errorf("ups = %d, want 1", len(proc.ups))
	}
}

type erroringCache struct{ calls int }

func (c *erroringCache) TryMarkIdempotent(ctx context.Context, testID, marker string) (bool, error) {
	c.calls++
	return false, errors.New("cache unreachable")
}

func TestWebhookCacheFailureDoesNotBlockProcessing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	proc := &fakeProcessor{}
	cache := &erroringCache{}
	router := gin.New()
	RegisterReceiverRoutes(router, NewHandlerWithCache(proc, cache))

	w := postAlert(router, alertForm("cache-err-1", "Down"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cache.calls != 1 {
		t.Fatalf("cache calls = %d, want 1", cache.calls)
	}
	if len(proc.downs) != 1 {
		t.Errorf("downs = %d, want 1 (cache errors must fail open)", len(proc.downs))
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status   string
		expected string
	}{
		{"Down", "down"},
		{"Up", "up"},
		{"Paused", "other"},
		{"anything-request-supplied", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.status); got != tt.expected {
			t.Errorf("statusLabel(%q) = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestWebhookDuplicateDeliveryProcessedOnce(t *testing.T) {
	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	first := postAlert(router, alertForm("dup-1", "Down"))
	second := postAlert(router, alertForm("dup-1", "Down"))

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d/%d, want 200/200", first.Code, second.Code)
	}
	if len(proc.downs) != 1 {
		t.Errorf("downs = %d, want 1 (duplicate suppressed)", len(proc.downs))
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("duplicate should get the same acknowledgement body")
	}
}

func TestWebhookUnknownStatusIsAcknowledged(t *testing.T) {
	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	form := alertForm("odd-1", "Paused")
	w := postAlert(router, form)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(proc.downs) != 0 || len(proc.ups) != 0 {
		t.Error("unknown status should not be dispatched")
	}
}

func TestWebhookMissingNameGetsGenericBody(t *testing.T) {
	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	form := alertForm("anon-1", "Down")
	form.Del("Name")
	w := postAlert(router, form)

	if w.Body.String() != "This HTTP triggered function executed successfully." {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestWebhookTokenAuth(t *testing.T) {
	ConfigureAuth("s3cret")
	defer ConfigureAuth("")

	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	w := postAlert(router, alertForm("auth-1", "Down"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}
	if len(proc.downs) != 0 {
		t.Error("no processing expected when unauthorized")
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/integrations/statuscake/webhook",
		strings.NewReader(alertForm("auth-1", "Down").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Webhook-Token", "s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", rec.Code)
	}
	if len(proc.downs) != 1 {
		t.Errorf("downs = %d, want 1", len(proc.downs))
	}
}

func TestWebhookTokenInQuery(t *testing.T) {
	ConfigureAuth("s3cret")
	defer ConfigureAuth("")

	proc := &fakeProcessor{}
	router := newWebhookRouter(proc)

	req := httptest.NewRequest(http.MethodPost, "/v1/integrations/statuscake/webhook?token=s3cret",
		strings.NewReader(alertForm("auth-q-1", "Down").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
