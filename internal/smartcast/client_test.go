package smartcast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeTV serves canned SmartCast API responses and records requests.
type fakeTV struct {
	mu       sync.Mutex
	server   *httptest.Server
	powerOn  bool
	requests []recordedRequest
}

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newFakeTV(t *testing.T) *fakeTV {
	t.Helper()
	tv := &fakeTV{}
	tv.server = httptest.NewTLSServer(http.HandlerFunc(tv.handle))
	t.Cleanup(tv.server.Close)
	return tv
}

func (tv *fakeTV) client(token string) *HTTPClient {
	return New(Options{BaseURL: tv.server.URL, AuthToken: token})
}

func (tv *fakeTV) record(r *http.Request) {
	rec := recordedRequest{
		method: r.Method,
		path:   r.URL.Path,
		auth:   r.Header.Get("AUTH"),
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
	}
	tv.mu.Lock()
	tv.requests = append(tv.requests, rec)
	tv.mu.Unlock()
}

func (tv *fakeTV) lastRequest() recordedRequest {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	return tv.requests[len(tv.requests)-1]
}

func (tv *fakeTV) handle(w http.ResponseWriter, r *http.Request) {
	tv.record(r)

	switch r.URL.Path {
	case "/state/device/power_mode":
		value := 0
		tv.mu.Lock()
		if tv.powerOn {
			value = 1
		}
		tv.mu.Unlock()
		writeJSON(w, map[string]any{
			"STATUS": map[string]any{"RESULT": "SUCCESS", "DETAIL": "Success"},
			"ITEMS":  []map[string]any{{"CNAME": "power_mode", "VALUE": value}},
		})
	case "/menu_native/dynamic/tv_settings/devices/name_input":
		writeJSON(w, map[string]any{
			"STATUS": map[string]any{"RESULT": "SUCCESS"},
			"ITEMS": []map[string]any{
				{"CNAME": "hdmi2", "NAME": "HDMI-2", "VALUE": map[string]any{"NAME": "Blu-ray"}},
				{"CNAME": "hdmi1", "NAME": "HDMI-1", "VALUE": ""},
				{"CNAME": "current_input", "NAME": "Current Input", "VALUE": "HDMI-1"},
			},
		})
	case "/menu_native/dynamic/tv_settings/devices/current_input":
		if r.Method == http.MethodGet {
			writeJSON(w, map[string]any{
				"STATUS": map[string]any{"RESULT": "SUCCESS"},
				"ITEMS":  []map[string]any{{"CNAME": "current_input", "VALUE": "HDMI-1", "HASHVAL": 1234}},
			})
			return
		}
		writeJSON(w, map[string]any{"STATUS": map[string]any{"RESULT": "SUCCESS"}})
	case "/app/current":
		writeJSON(w, map[string]any{
			"STATUS": map[string]any{"RESULT": "SUCCESS"},
			"ITEM": map[string]any{
				"VALUE": map[string]any{"APP_ID": "1", "NAME_SPACE": 3, "MESSAGE": nil},
			},
		})
	case "/app/launch", "/key_command/":
		writeJSON(w, map[string]any{"STATUS": map[string]any{"RESULT": "SUCCESS"}})
	case "/state/device/deviceinfo":
		writeJSON(w, map[string]any{
			"STATUS": map[string]any{"RESULT": "SUCCESS"},
			"ITEMS": []map[string]any{{
				"CNAME": "deviceinfo",
				"VALUE": map[string]any{
					"MODEL_NAME": "M55Q7-J01",
					"CAST_NAME":  "Living Room TV",
					"SYSTEM_INFO": map[string]any{
						"SERIAL_NUMBER": "SN12345",
						"VERSION":       "1.710.10.1-1",
					},
				},
			}},
		})
	case "/pairing/start":
		writeJSON(w, map[string]any{
			"STATUS": map[string]any{"RESULT": "SUCCESS"},
			"ITEM":   map[string]any{"PAIRING_REQ_TOKEN": 42, "CHALLENGE_TYPE": 1},
		})
	case "/pairing/pair":
		tv.mu.Lock()
		last := tv.requests[len(tv.requests)-1]
		tv.mu.Unlock()
		if last.body["RESPONSE_VALUE"] == "0000" {
			writeJSON(w, map[string]any{"STATUS": map[string]any{"RESULT": "CHALLENGE_INCORRECT"}})
			return
		}
		writeJSON(w, map[string]any{
			"STATUS": map[string]any{"RESULT": "SUCCESS"},
			"ITEM":   map[string]any{"AUTH_TOKEN": "Ztoken99"},
		})
	case "/pairing/cancel":
		writeJSON(w, map[string]any{"STATUS": map[string]any{"RESULT": "SUCCESS"}})
	default:
		writeJSON(w, map[string]any{"STATUS": map[string]any{"RESULT": "URI_NOT_FOUND"}})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetPowerState(t *testing.T) {
	tv := newFakeTV(t)
	c := tv.client("Ztok")
	ctx := context.Background()

	on, err := c.GetPowerState(ctx)
	if err != nil {
		t.Fatalf("GetPowerState() error: %v", err)
	}
	if on {
		t.Error("GetPowerState() = true, want false")
	}

	tv.mu.Lock()
	tv.powerOn = true
	tv.mu.Unlock()

	on, err = c.GetPowerState(ctx)
	if err != nil {
		t.Fatalf("GetPowerState() error: %v", err)
	}
	if !on {
		t.Error("GetPowerState() = false, want true")
	}

	if got := tv.lastRequest().auth; got != "Ztok" {
		t.Errorf("AUTH header = %q, want Ztok", got)
	}
}

func TestGetInputs(t *testing.T) {
	tv := newFakeTV(t)
	c := tv.client("Ztok")

	inputs, err := c.GetInputs(context.Background())
	if err != nil {
		t.Fatalf("GetInputs() error: %v", err)
	}

	// Custom name preferred, current_input item skipped, result sorted.
	want := []string{"Blu-ray", "HDMI-1"}
	if len(inputs) != len(want) {
		t.Fatalf("GetInputs() = %v, want %v", inputs, want)
	}
	for i := range want {
		if inputs[i] != want[i] {
			t.Errorf("GetInputs()[%d] = %q, want %q", i, inputs[i], want[i])
		}
	}
}

func TestGetCurrentApp(t *testing.T) {
	tv := newFakeTV(t)
	c := tv.client("Ztok")

	app, err := c.GetCurrentApp(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentApp() error: %v", err)
	}
	if app != "Netflix" {
		t.Errorf("GetCurrentApp() = %q, want Netflix", app)
	}
}

func TestSendKey(t *testing.T) {
	tv := newFakeTV(t)
	c := tv.client("Ztok")

	key, _ := LookupKey("VOL_UP")
	if err := c.SendKey(context.Background(), key); err != nil {
		t.Fatalf("SendKey() error: %v", err)
	}

	req := tv.lastRequest()
	if req.method != http.MethodPut || req.path != "/key_command/" {
		t.Fatalf("request = %s %s, want PUT /key_command/", req.method, req.path)
	}
	keylist, ok := req.body["KEYLIST"].([]any)
	if !ok || len(keylist) != 1 {
		t.Fatalf("KEYLIST = %v", req.body["KEYLIST"])
	}
	entry := keylist[0].(map[string]any)
	if entry["CODESET"].(float64) != 5 || entry["CODE"].(float64) != 1 {
		t.Errorf("key entry = %v, want codeset 5 code 1", entry)
	}
}

func TestSetInput(t *testing.T) {
	tv := newFakeTV(t)
	c := tv.client("Ztok")

	if err := c.SetInput(context.Background(), "HDMI-2"); err != nil {
		t.Fatalf("SetInput() error: %v", err)
	}

	req := tv.lastRequest()
	if req.method != http.MethodPut {
		t.Fatalf("final request method = %s, want PUT", req.method)
	}
	if req.body["VALUE"] != "HDMI-2" || req.body["HASHVAL"].(float64) != 1234 {
		t.Errorf("modify body = %v", req.body)
	}
}

func TestLaunchApp(t *testing.T) {
	tv := newFakeTV(t)
	c := tv.client("Ztok")
	ctx := context.Background()

	if err := c.LaunchApp(ctx, "Netflix"); err != nil {
		t.Fatalf("LaunchApp() error: %v", err)
	}
	req := tv.lastRequest()
	value := req.body["VALUE"].(map[string]any)
	if value["APP_ID"] != "1" || value["NAME_SPACE"].(float64) != 3 {
		t.Errorf("launch body = %v", value)
	}

	if err := c.LaunchApp(ctx, "Nonexistent"); !errors.Is(err, ErrUnknownApp) {
		t.Errorf("LaunchApp(unknown) = %v, want ErrUnknownApp", err)
	}
}

func TestGetDeviceInfo(t *testing.T) {
	tv := newFakeTV(t)
	c := tv.client("Ztok")

	info, err := c.GetDeviceInfo(context.Background())
	if err != nil {
		t.Fatalf("GetDeviceInfo() error: %v", err)
	}
	if info.ModelName != "M55Q7-J01" || info.SerialNumber != "SN12345" || info.Version != "1.710.10.1-1" {
		t.Errorf("GetDeviceInfo() = %+v", info)
	}
}

func TestPairingFlow(t *testing.T) {
	tv := newFakeTV(t)
	c := tv.client("")
	ctx := context.Background()

	challenge, err := c.StartPairing(ctx, "vizio-bridge", "Vizio Bridge")
	if err != nil {
		t.Fatalf("StartPairing() error: %v", err)
	}
	if challenge.Token != 42 || challenge.ChallengeType != 1 {
		t.Errorf("challenge = %+v", challenge)
	}

	if _, err := c.SubmitPIN(ctx, "vizio-bridge", challenge, "0000"); !errors.Is(err, ErrChallengeIncorrect) {
		t.Errorf("SubmitPIN(wrong pin) = %v, want ErrChallengeIncorrect", err)
	}

	token, err := c.SubmitPIN(ctx, "vizio-bridge", challenge, "1234")
	if err != nil {
		t.Fatalf("SubmitPIN() error: %v", err)
	}
	if token != "Ztoken99" {
		t.Errorf("auth token = %q, want Ztoken99", token)
	}

	if err := c.CancelPairing(ctx, "vizio-bridge"); err != nil {
		t.Errorf("CancelPairing() error: %v", err)
	}
}

func TestUnreachableDevice(t *testing.T) {
	c := New(Options{Address: "127.0.0.1", Port: 1})

	_, err := c.GetPowerState(context.Background())
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("GetPowerState() unreachable = %v, want ErrRequestFailed", err)
	}
}
