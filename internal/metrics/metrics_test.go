package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(storeWrites.WithLabelValues("weights", "error"))
	IncStoreWrite("weights", errors.New("boom"))
	if got := testutil.ToFloat64(storeWrites.WithLabelValues("weights", "error")); got != before+1 {
		t.Fatalf("expected error write counted, got %v", got)
	}

	okBefore := testutil.ToFloat64(storeWrites.WithLabelValues("weights", "ok"))
	IncStoreWrite("weights", nil)
	if got := testutil.ToFloat64(storeWrites.WithLabelValues("weights", "ok")); got != okBefore+1 {
		t.Fatalf("expected ok write counted, got %v", got)
	}

	timerBefore := testutil.ToFloat64(timerEvents.WithLabelValues("start"))
	IncTimerEvent("start")
	if got := testutil.ToFloat64(timerEvents.WithLabelValues("start")); got != timerBefore+1 {
		t.Fatalf("expected timer event counted")
	}

	fbBefore := testutil.ToFloat64(feedbackSent.WithLabelValues("impact_light"))
	IncFeedback("impact_light")
	if got := testutil.ToFloat64(feedbackSent.WithLabelValues("impact_light")); got != fbBefore+1 {
		t.Fatalf("expected feedback counted")
	}

	profBefore := testutil.ToFloat64(profileUpdates.WithLabelValues("ok"))
	IncProfileUpdate(nil)
	if got := testutil.ToFloat64(profileUpdates.WithLabelValues("ok")); got != profBefore+1 {
		t.Fatalf("expected profile update counted")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	IncTimerEvent("complete")

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "healthtracker_timer_events_total") {
		t.Fatalf("expected timer counter in exposition")
	}
}
