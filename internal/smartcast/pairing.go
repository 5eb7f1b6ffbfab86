package smartcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PairingChallenge is the TV's response to a pairing request. The
// token and challenge type must be echoed back with the on-screen PIN.
type PairingChallenge struct {
	Token         int `json:"pairing_req_token"`
	ChallengeType int `json:"challenge_type"`
}

// StartPairing asks the TV to begin PIN pairing. The TV displays a
// four-digit PIN on screen; pass it to SubmitPIN together with the
// returned challenge.
//
// Parameters:
//   - deviceID: A stable identifier for this bridge instance
//   - deviceName: The name shown in the TV's paired-devices list
func (c *HTTPClient) StartPairing(ctx context.Context, deviceID, deviceName string) (*PairingChallenge, error) {
	body := map[string]any{
		"DEVICE_ID":   deviceID,
		"DEVICE_NAME": deviceName,
	}
	resp, err := c.do(ctx, http.MethodPut, "/pairing/start", body)
	if err != nil {
		return nil, err
	}

	var item struct {
		Token         int `json:"PAIRING_REQ_TOKEN"`
		ChallengeType int `json:"CHALLENGE_TYPE"`
	}
	if err := json.Unmarshal(resp.Item, &item); err != nil {
		return nil, fmt.Errorf("decoding pairing challenge: %w", err)
	}

	return &PairingChallenge{Token: item.Token, ChallengeType: item.ChallengeType}, nil
}

// SubmitPIN completes pairing with the PIN shown on the TV screen.
// Returns the auth token to persist for authenticated calls.
// A wrong PIN returns ErrChallengeIncorrect; the challenge stays
// valid for further attempts until the TV gives up.
func (c *HTTPClient) SubmitPIN(ctx context.Context, deviceID string, challenge *PairingChallenge, pin string) (string, error) {
	body := map[string]any{
		"DEVICE_ID":         deviceID,
		"CHALLENGE_TYPE":    challenge.ChallengeType,
		"RESPONSE_VALUE":    pin,
		"PAIRING_REQ_TOKEN": challenge.Token,
	}
	resp, err := c.do(ctx, http.MethodPut, "/pairing/pair", body)
	if err != nil {
		return "", err
	}

	var item struct {
		AuthToken string `json:"AUTH_TOKEN"`
	}
	if err := json.Unmarshal(resp.Item, &item); err != nil {
		return "", fmt.Errorf("decoding pairing result: %w", err)
	}
	if item.AuthToken == "" {
		return "", fmt.Errorf("%w: empty auth token", ErrAPIFailure)
	}

	return item.AuthToken, nil
}

// CancelPairing abandons an in-progress pairing attempt and clears
// the PIN from the TV screen.
func (c *HTTPClient) CancelPairing(ctx context.Context, deviceID string) error {
	body := map[string]any{
		"DEVICE_ID": deviceID,
	}
	_, err := c.do(ctx, http.MethodPut, "/pairing/cancel", body)
	return err
}
