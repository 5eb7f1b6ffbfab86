package smartcast

import "testing"

func TestParseSSDPResponse(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n" +
		"CACHE-CONTROL: max-age=1800\r\n" +
		"ST: urn:dial-multiscreen-org:device:dial:1\r\n" +
		"USN: uuid:abc-123::urn:dial-multiscreen-org:device:dial:1\r\n" +
		"LOCATION: http://192.168.1.50:8008/ssdp/device-desc.xml\r\n" +
		"SERVER: Linux/4.9 UPnP/1.0 SmartCast/1.0\r\n" +
		"\r\n"

	dev := parseSSDPResponse("192.168.1.50", []byte(raw))
	if dev == nil {
		t.Fatal("parseSSDPResponse() = nil")
	}
	if dev.IP != "192.168.1.50" {
		t.Errorf("IP = %q", dev.IP)
	}
	if dev.Location != "http://192.168.1.50:8008/ssdp/device-desc.xml" {
		t.Errorf("Location = %q", dev.Location)
	}
	if dev.USN == "" || dev.Server == "" {
		t.Errorf("headers not parsed: %+v", dev)
	}
}

func TestParseSSDPResponseWrongTarget(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n" +
		"ST: urn:schemas-upnp-org:device:MediaRenderer:1\r\n" +
		"\r\n"

	if dev := parseSSDPResponse("192.168.1.60", []byte(raw)); dev != nil {
		t.Errorf("parseSSDPResponse() = %+v, want nil for foreign search target", dev)
	}
}
