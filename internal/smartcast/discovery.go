package smartcast

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// SSDP parameters for SmartCast discovery. SmartCast TVs answer DIAL
// multiscreen searches.
const (
	ssdpAddress      = "239.255.255.250:1900"
	ssdpSearchTarget = "urn:dial-multiscreen-org:device:dial:1"
	ssdpMX           = 3
)

// Discovered describes one device that answered an SSDP search.
type Discovered struct {
	// IP is the responding device's address.
	IP string `json:"ip"`

	// Location is the device description URL from the response.
	Location string `json:"location,omitempty"`

	// USN is the unique service name, if provided.
	USN string `json:"usn,omitempty"`

	// Server is the SERVER header, useful for identifying firmware.
	Server string `json:"server,omitempty"`
}

// Discover searches the local network for SmartCast devices.
//
// It multicasts an M-SEARCH and collects unicast responses until the
// timeout elapses or the context is cancelled. Duplicate responses
// from the same address are collapsed.
//
// Parameters:
//   - ctx: Cancels the search early
//   - timeout: How long to listen for responses
//
// Returns:
//   - []Discovered: Devices found, possibly empty
//   - error: If the multicast socket could not be opened
func Discover(ctx context.Context, timeout time.Duration) ([]Discovered, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("opening discovery socket: %w", err)
	}
	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", ssdpAddress)
	if err != nil {
		return nil, fmt.Errorf("resolving ssdp address: %w", err)
	}

	search := strings.Join([]string{
		"M-SEARCH * HTTP/1.1",
		"HOST: " + ssdpAddress,
		`MAN: "ssdp:discover"`,
		fmt.Sprintf("MX: %d", ssdpMX),
		"ST: " + ssdpSearchTarget,
		"", "",
	}, "\r\n")

	if _, err := conn.WriteTo([]byte(search), dst); err != nil {
		return nil, fmt.Errorf("sending m-search: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}

	seen := make(map[string]Discovered)
	buf := make([]byte, 2048)

	for {
		if ctx.Err() != nil {
			break
		}

		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			// Deadline expiry ends the collection window.
			break
		}

		host, _, err := net.SplitHostPort(addr.String())
		if err != nil {
			host = addr.String()
		}

		dev := parseSSDPResponse(host, buf[:n])
		if dev != nil {
			seen[dev.IP] = *dev
		}
	}

	devices := make([]Discovered, 0, len(seen))
	for _, dev := range seen {
		devices = append(devices, dev)
	}

	return devices, nil
}

// parseSSDPResponse extracts headers from one SSDP response datagram.
// Responses for other search targets are ignored.
func parseSSDPResponse(host string, data []byte) *Discovered {
	reader := bufio.NewReader(strings.NewReader(string(data)))

	// Discard the status line; anything non-HTTP fails header parsing below.
	if _, err := reader.ReadString('\n'); err != nil {
		return nil
	}

	tp := http.Header{}
	for {
		line, err := reader.ReadString('\n')
		if err != nil || strings.TrimSpace(line) == "" {
			break
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		tp.Set(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}

	st := tp.Get("ST")
	if st != "" && st != ssdpSearchTarget {
		return nil
	}

	return &Discovered{
		IP:       host,
		Location: tp.Get("LOCATION"),
		USN:      tp.Get("USN"),
		Server:   tp.Get("SERVER"),
	}
}
