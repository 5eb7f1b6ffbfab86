package session

import (
	"bytes"
	"fmt"
	"net"
)

// Magic packet framing.
const (
	wolSyncBytes  = 6
	wolMACRepeats = 16

	// defaultWOLPort is the discard-protocol port most NICs listen on.
	defaultWOLPort = 9

	// defaultWOLBroadcast reaches the whole local segment.
	defaultWOLBroadcast = "255.255.255.255"
)

// WakeFunc sends a wake-on-LAN magic packet. Injectable so tests can
// observe wake attempts without touching the network.
type WakeFunc func(mac, broadcast string, port int) error

// SendMagicPacket broadcasts a wake-on-LAN magic packet for the given
// MAC address: six 0xFF sync bytes followed by the MAC repeated
// sixteen times.
//
// Parameters:
//   - mac: Target hardware address in any net.ParseMAC format
//   - broadcast: Destination address; empty selects the limited broadcast
//   - port: Destination UDP port; zero selects port 9
func SendMagicPacket(mac, broadcast string, port int) error {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return fmt.Errorf("parsing mac address: %w", err)
	}
	if len(hw) != 6 {
		return fmt.Errorf("mac address %q is not 48-bit", mac)
	}

	if broadcast == "" {
		broadcast = defaultWOLBroadcast
	}
	if port == 0 {
		port = defaultWOLPort
	}

	var packet bytes.Buffer
	packet.Write(bytes.Repeat([]byte{0xFF}, wolSyncBytes))
	for i := 0; i < wolMACRepeats; i++ {
		packet.Write(hw)
	}

	conn, err := net.Dial("udp4", fmt.Sprintf("%s:%d", broadcast, port))
	if err != nil {
		return fmt.Errorf("opening wake socket: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write(packet.Bytes()); err != nil {
		return fmt.Errorf("sending magic packet: %w", err)
	}

	return nil
}
