package device

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// Port range limits for wake-on-LAN.
const (
	minWOLPort = 1
	maxWOLPort = 65535
)

// idPattern restricts device IDs to lowercase alphanumerics, hyphens
// and underscores so they are safe in MQTT topics and URLs.
var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks a TV record for errors before persistence.
//
// Returns:
//   - error: ErrInvalidDevice wrapped with details, or nil if valid
func (t *TV) Validate() error {
	var errs []string

	if t.ID == "" {
		errs = append(errs, "id is required")
	} else if !idPattern.MatchString(t.ID) {
		errs = append(errs, fmt.Sprintf("id %q must be lowercase alphanumeric with hyphens or underscores", t.ID))
	}

	if t.Name == "" {
		errs = append(errs, "name is required")
	}

	if t.Address == "" {
		errs = append(errs, "address is required")
	}

	if t.MACAddress != "" {
		if _, err := net.ParseMAC(t.MACAddress); err != nil {
			errs = append(errs, fmt.Sprintf("mac_address %q is not a valid MAC address", t.MACAddress))
		}
	}
	if t.MACAddress2 != "" {
		if _, err := net.ParseMAC(t.MACAddress2); err != nil {
			errs = append(errs, fmt.Sprintf("mac_address2 %q is not a valid MAC address", t.MACAddress2))
		}
	}

	if t.WOLBroadcast != "" {
		if ip := net.ParseIP(t.WOLBroadcast); ip == nil {
			errs = append(errs, fmt.Sprintf("wol_broadcast %q is not a valid IP address", t.WOLBroadcast))
		}
	}

	if t.WOLPort != 0 && (t.WOLPort < minWOLPort || t.WOLPort > maxWOLPort) {
		errs = append(errs, fmt.Sprintf("wol_port must be %d-%d", minWOLPort, maxWOLPort))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDevice, strings.Join(errs, "; "))
	}

	return nil
}
