package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/pill-ring/internal/dose"
	"github.com/sweeney/pill-ring/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, chan time.Duration) {
	t.Helper()
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:   100,
		HoldMs:   2000,
		RingSize: 12,
		Broker:   "tcp://192.168.1.200:1883",
		HTTPAddr: ":80",
	}
	tr := status.NewTracker(now.Add(-time.Hour), cfg, func() time.Time { return now })
	tr.Update(
		dose.DisplayState{Mode: dose.ModeCountdownBright, Segments: 9},
		now.Add(-6*time.Hour), 24*time.Hour, true, dose.EventCounts{Doses: 4},
	)

	intervals := make(chan time.Duration, 1)
	srv := New(":0", tr, intervals)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr, intervals
}

func postForm(t *testing.T, url string, form url.Values) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestIndexPrefillsInterval(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body := readBody(t, resp)

	// 24h interval decomposes to 1/0/0.
	if !strings.Contains(body, `name="days" min="0" value="1"`) {
		t.Error("days field not prefilled with 1")
	}
	if !strings.Contains(body, "Since last dose") {
		t.Error("missing since-last-dose row")
	}
	if !strings.Contains(body, "6h 0m 0s") {
		t.Error("since-last-dose not rendered")
	}
	if strings.Contains(body, "Interval updated") {
		t.Error("success banner on plain GET")
	}
}

func TestPostValidIntervalQueuesChange(t *testing.T) {
	ts, _, intervals := newTestServer(t)

	resp := postForm(t, ts.URL+"/", url.Values{
		"days": {"1"}, "hours": {"0"}, "minutes": {"0"},
	})
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Interval updated") {
		t.Error("missing success banner")
	}

	select {
	case d := <-intervals:
		if d != 24*time.Hour {
			t.Errorf("queued interval: got %v, want 24h", d)
		}
	default:
		t.Fatal("no interval queued")
	}
}

func TestPostZeroIntervalIsNoOp(t *testing.T) {
	ts, _, intervals := newTestServer(t)

	resp := postForm(t, ts.URL+"/", url.Values{
		"days": {"0"}, "hours": {"0"}, "minutes": {"0"},
	})
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if strings.Contains(readBody(t, resp), "Interval updated") {
		t.Error("success banner on zero interval")
	}

	select {
	case d := <-intervals:
		t.Errorf("zero interval queued: %v", d)
	default:
	}
}

func TestPostNegativeTotalIsNoOp(t *testing.T) {
	ts, _, intervals := newTestServer(t)

	postForm(t, ts.URL+"/", url.Values{
		"days": {"-1"}, "hours": {"0"}, "minutes": {"0"},
	})

	select {
	case d := <-intervals:
		t.Errorf("negative interval queued: %v", d)
	default:
	}
}

func TestPostMalformedFieldsSilentlyIgnored(t *testing.T) {
	ts, _, intervals := newTestServer(t)

	// Malformed and missing fields read as zero; total is 30 minutes.
	resp := postForm(t, ts.URL+"/", url.Values{
		"days": {"oops"}, "minutes": {"30"},
	})
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	select {
	case d := <-intervals:
		if d != 30*time.Minute {
			t.Errorf("queued interval: got %v, want 30m", d)
		}
	default:
		t.Fatal("no interval queued")
	}
}

func TestPostOutOfRangeValuesAreSummed(t *testing.T) {
	ts, _, intervals := newTestServer(t)

	// hours=25 exceeds the advisory form range but still counts.
	postForm(t, ts.URL+"/", url.Values{
		"days": {"0"}, "hours": {"25"}, "minutes": {"90"},
	})

	select {
	case d := <-intervals:
		want := 25*time.Hour + 90*time.Minute
		if d != want {
			t.Errorf("queued interval: got %v, want %v", d, want)
		}
	default:
		t.Fatal("no interval queued")
	}
}

func TestPostWhilePendingKeepsEarlierChange(t *testing.T) {
	ts, _, intervals := newTestServer(t)

	postForm(t, ts.URL+"/", url.Values{"hours": {"8"}})
	resp := postForm(t, ts.URL+"/", url.Values{"hours": {"6"}})
	if strings.Contains(readBody(t, resp), "Interval updated") {
		t.Error("second change accepted while first still pending")
	}

	if d := <-intervals; d != 8*time.Hour {
		t.Errorf("queued interval: got %v, want 8h", d)
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Mode != "COUNTDOWN_BRIGHT" {
		t.Errorf("mode: got %q", sj.Status.Mode)
	}
	if sj.Status.Segments != 9 {
		t.Errorf("segments: got %d, want 9", sj.Status.Segments)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected mqtt connected")
	}
}

func TestUnknownPath404(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
