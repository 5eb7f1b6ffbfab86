package smartcast

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultPort is the SmartCast API port on current firmware.
// Older sets listen on 9000 instead.
const DefaultPort = 7345

// defaultTimeout bounds individual API calls.
const defaultTimeout = 8 * time.Second

// Client is the request/response surface the session layer drives.
// Implementations must be safe for concurrent use.
type Client interface {
	// GetPowerState reports whether the panel is on.
	GetPowerState(ctx context.Context) (bool, error)

	// GetInputs returns the names of the physical inputs.
	GetInputs(ctx context.Context) ([]string, error)

	// GetApps returns the names of launchable apps.
	GetApps(ctx context.Context) ([]string, error)

	// GetCurrentInput returns the name of the active input.
	GetCurrentInput(ctx context.Context) (string, error)

	// GetCurrentApp returns the name of the running app, or one of
	// the AppUnknown / AppNotRunning sentinels.
	GetCurrentApp(ctx context.Context) (string, error)

	// SendKey presses a remote key.
	SendKey(ctx context.Context, key KeyCode) error

	// SetInput switches to the named physical input.
	SetInput(ctx context.Context, name string) error

	// LaunchApp starts the named app from the catalogue.
	LaunchApp(ctx context.Context, name string) error

	// PowerOn and PowerOff press the discrete power keys.
	PowerOn(ctx context.Context) error
	PowerOff(ctx context.Context) error

	// GetDeviceInfo returns model and firmware details.
	GetDeviceInfo(ctx context.Context) (*DeviceInfo, error)
}

// Options configures an HTTPClient.
type Options struct {
	// Address is the IP address or hostname of the TV.
	Address string

	// Port is the API port. Zero selects DefaultPort.
	Port int

	// AuthToken is the pairing token. Empty means unauthenticated;
	// most state queries and all commands will be rejected.
	AuthToken string

	// Timeout bounds each API call. Zero selects the default.
	Timeout time.Duration

	// BaseURL overrides the https://address:port base when set.
	BaseURL string
}

// DeviceInfo holds identification details reported by the TV.
type DeviceInfo struct {
	ModelName    string         `json:"model_name"`
	SerialNumber string         `json:"serial_number"`
	Version      string         `json:"version"`
	CastName     string         `json:"cast_name,omitempty"`
	Raw          map[string]any `json:"-"`
}

// HTTPClient implements Client against the SmartCast HTTPS API.
//
// The TV presents a self-signed certificate, so verification is
// disabled for this connection only.
type HTTPClient struct {
	baseURL   string
	authToken string
	http      *http.Client
}

// Verify interface compliance at compile time.
var _ Client = (*HTTPClient)(nil)

// New creates a SmartCast API client. No network activity occurs
// until the first call; use GetPowerState as a liveness probe.
func New(opts Options) *HTTPClient {
	port := opts.Port
	if port == 0 {
		port = DefaultPort
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s:%d", opts.Address, port)
	}

	return &HTTPClient{
		baseURL:   baseURL,
		authToken: opts.AuthToken,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // self-signed device certificate
				},
			},
		},
	}
}

// apiStatus is the STATUS envelope on every SmartCast response.
type apiStatus struct {
	Result string `json:"RESULT"`
	Detail string `json:"DETAIL"`
}

// apiResponse is the generic SmartCast response shape. ITEMS carries
// list results, ITEM single-object results.
type apiResponse struct {
	Status apiStatus         `json:"STATUS"`
	Items  []json.RawMessage `json:"ITEMS"`
	Item   json.RawMessage   `json:"ITEM"`
}

// do performs one API call and decodes the response envelope.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*apiResponse, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("AUTH", c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrNotAuthorised
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrRequestFailed, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if parsed.Status.Result != "SUCCESS" {
		return &parsed, statusError(parsed.Status)
	}

	return &parsed, nil
}

// statusError maps a failed STATUS envelope to a sentinel error.
func statusError(status apiStatus) error {
	switch status.Result {
	case "CHALLENGE_INCORRECT":
		return ErrChallengeIncorrect
	case "PAIRING_DENIED", "MAX_CHALLENGES_EXCEEDED", "BLOCKED":
		return fmt.Errorf("%w: %s", ErrPairingDenied, status.Result)
	default:
		return fmt.Errorf("%w: %s %s", ErrAPIFailure, status.Result, status.Detail)
	}
}

// GetPowerState reports whether the panel is on.
func (c *HTTPClient) GetPowerState(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/state/device/power_mode", nil)
	if err != nil {
		return false, err
	}
	if len(resp.Items) == 0 {
		return false, fmt.Errorf("%w: empty power_mode response", ErrAPIFailure)
	}

	var item struct {
		Value int `json:"VALUE"`
	}
	if err := json.Unmarshal(resp.Items[0], &item); err != nil {
		return false, fmt.Errorf("decoding power_mode: %w", err)
	}

	return item.Value == 1, nil
}

// inputSettingsPath is the settings subtree listing physical inputs.
const inputSettingsPath = "/menu_native/dynamic/tv_settings/devices/name_input"

// currentInputPath is the settings item holding the active input.
const currentInputPath = "/menu_native/dynamic/tv_settings/devices/current_input"

// GetInputs returns the names of the physical inputs.
func (c *HTTPClient) GetInputs(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, inputSettingsPath, nil)
	if err != nil {
		return nil, err
	}

	var inputs []string
	for _, raw := range resp.Items {
		var item struct {
			CName string          `json:"CNAME"`
			Name  string          `json:"NAME"`
			Value json.RawMessage `json:"VALUE"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if item.CName == "current_input" || item.Name == "" {
			continue
		}
		inputs = append(inputs, inputDisplayName(item.Name, item.Value))
	}

	sort.Strings(inputs)

	return inputs, nil
}

// inputDisplayName prefers the user-assigned name stored in VALUE
// over the hardware name. VALUE is either a bare string or an object
// with a NAME field, depending on firmware.
func inputDisplayName(hardware string, value json.RawMessage) string {
	if len(value) == 0 {
		return hardware
	}

	var custom string
	if err := json.Unmarshal(value, &custom); err == nil && custom != "" {
		return custom
	}

	var obj struct {
		Name string `json:"NAME"`
	}
	if err := json.Unmarshal(value, &obj); err == nil && obj.Name != "" {
		return obj.Name
	}

	return hardware
}

// GetApps returns the catalogue of launchable app names.
func (c *HTTPClient) GetApps(_ context.Context) ([]string, error) {
	return AppNames(), nil
}

// GetCurrentInput returns the name of the active input.
func (c *HTTPClient) GetCurrentInput(ctx context.Context) (string, error) {
	name, _, err := c.currentInput(ctx)
	return name, err
}

// currentInput fetches the active input name and the HASHVAL needed
// to modify it.
func (c *HTTPClient) currentInput(ctx context.Context) (string, int64, error) {
	resp, err := c.do(ctx, http.MethodGet, currentInputPath, nil)
	if err != nil {
		return "", 0, err
	}
	if len(resp.Items) == 0 {
		return "", 0, fmt.Errorf("%w: empty current_input response", ErrAPIFailure)
	}

	var item struct {
		Value   string `json:"VALUE"`
		Hashval int64  `json:"HASHVAL"`
	}
	if err := json.Unmarshal(resp.Items[0], &item); err != nil {
		return "", 0, fmt.Errorf("decoding current_input: %w", err)
	}

	return item.Value, item.Hashval, nil
}

// SetInput switches to the named physical input. The settings API
// requires the current item's HASHVAL, so this is a read-then-write.
func (c *HTTPClient) SetInput(ctx context.Context, name string) error {
	_, hashval, err := c.currentInput(ctx)
	if err != nil {
		return err
	}

	body := map[string]any{
		"REQUEST": "MODIFY",
		"VALUE":   name,
		"HASHVAL": hashval,
	}
	_, err = c.do(ctx, http.MethodPut, currentInputPath, body)
	return err
}

// GetCurrentApp returns the name of the running app.
func (c *HTTPClient) GetCurrentApp(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/app/current", nil)
	if err != nil {
		return "", err
	}

	var item struct {
		Value struct {
			AppID     string `json:"APP_ID"`
			Namespace int    `json:"NAME_SPACE"`
		} `json:"VALUE"`
	}
	if err := json.Unmarshal(resp.Item, &item); err != nil {
		return "", fmt.Errorf("decoding current app: %w", err)
	}

	return resolveAppName(item.Value.Namespace, item.Value.AppID), nil
}

// LaunchApp starts the named app from the catalogue.
func (c *HTTPClient) LaunchApp(ctx context.Context, name string) error {
	app, ok := LookupApp(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownApp, name)
	}

	body := map[string]any{
		"VALUE": map[string]any{
			"NAME_SPACE": app.Namespace,
			"APP_ID":     app.ID,
			"MESSAGE":    app.Message,
		},
	}
	_, err := c.do(ctx, http.MethodPut, "/app/launch", body)
	return err
}

// SendKey presses a remote key.
func (c *HTTPClient) SendKey(ctx context.Context, key KeyCode) error {
	body := map[string]any{
		"KEYLIST": []map[string]any{
			{
				"CODESET": key.Codeset,
				"CODE":    key.Code,
				"ACTION":  "KEYPRESS",
			},
		},
	}
	_, err := c.do(ctx, http.MethodPut, "/key_command/", body)
	return err
}

// PowerOn presses the discrete power-on key.
func (c *HTTPClient) PowerOn(ctx context.Context) error {
	return c.SendKey(ctx, keyCodes["POW_ON"])
}

// PowerOff presses the discrete power-off key.
func (c *HTTPClient) PowerOff(ctx context.Context) error {
	return c.SendKey(ctx, keyCodes["POW_OFF"])
}

// GetDeviceInfo returns model and firmware details.
func (c *HTTPClient) GetDeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/state/device/deviceinfo", nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: empty deviceinfo response", ErrAPIFailure)
	}

	var item struct {
		Value map[string]any `json:"VALUE"`
	}
	if err := json.Unmarshal(resp.Items[0], &item); err != nil {
		return nil, fmt.Errorf("decoding deviceinfo: %w", err)
	}

	info := &DeviceInfo{Raw: item.Value}
	info.ModelName, _ = item.Value["MODEL_NAME"].(string)
	info.CastName, _ = item.Value["CAST_NAME"].(string)
	if sys, ok := item.Value["SYSTEM_INFO"].(map[string]any); ok {
		info.SerialNumber, _ = sys["SERIAL_NUMBER"].(string)
		info.Version, _ = sys["VERSION"].(string)
	}

	return info, nil
}

// IsHDMIInput reports whether a source name denotes a physical HDMI
// input rather than an app.
func IsHDMIInput(name string) bool {
	return strings.HasPrefix(strings.ToUpper(name), "HDMI")
}
