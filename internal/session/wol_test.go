package session

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestSendMagicPacket(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	defer conn.Close()

	addr := conn.LocalAddr().(*net.UDPAddr)

	if err := SendMagicPacket("aa:bb:cc:dd:ee:ff", "127.0.0.1", addr.Port); err != nil {
		t.Fatalf("SendMagicPacket() error: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 256)
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("reading packet: %v", err)
	}

	mac := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	wantLen := wolSyncBytes + wolMACRepeats*len(mac)
	if n != wantLen {
		t.Fatalf("packet length = %d, want %d", n, wantLen)
	}
	if !bytes.Equal(buf[:wolSyncBytes], bytes.Repeat([]byte{0xFF}, wolSyncBytes)) {
		t.Error("sync bytes malformed")
	}
	for i := 0; i < wolMACRepeats; i++ {
		start := wolSyncBytes + i*len(mac)
		if !bytes.Equal(buf[start:start+len(mac)], mac) {
			t.Fatalf("mac repeat %d malformed", i)
		}
	}
}

func TestSendMagicPacketBadMAC(t *testing.T) {
	if err := SendMagicPacket("not-a-mac", "", 0); err == nil {
		t.Error("SendMagicPacket(bad mac) = nil, want error")
	}
}
