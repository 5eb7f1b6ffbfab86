package session

import (
	"testing"

	"github.com/nerrad567/gray-logic-vizio/internal/smartcast"
)

func TestMapKey(t *testing.T) {
	tests := []struct {
		key  string
		want smartcast.KeyCode
	}{
		{"VOLUME_UP", smartcast.KeyCode{Codeset: 5, Code: 1}},
		{"KEY_VOLUME_DOWN", smartcast.KeyCode{Codeset: 5, Code: 0}},
		{"volume_up", smartcast.KeyCode{Codeset: 5, Code: 1}},
		{"MUTE", smartcast.KeyCode{Codeset: 5, Code: 4}},
		{"POWER", smartcast.KeyCode{Codeset: 11, Code: 2}},
		{"ENTER", smartcast.KeyCode{Codeset: 3, Code: 2}},
		{"CHANNEL_UP", smartcast.KeyCode{Codeset: 8, Code: 1}},
		{"PREVIOUS", smartcast.KeyCode{Codeset: 8, Code: 2}},
		// Native SmartCast names pass straight through.
		{"POW_ON", smartcast.KeyCode{Codeset: 11, Code: 1}},
	}

	for _, tt := range tests {
		got, ok := MapKey(tt.key)
		if !ok {
			t.Errorf("MapKey(%q) unmapped", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("MapKey(%q) = %+v, want %+v", tt.key, got, tt.want)
		}
	}
}

func TestMapKeyUnmapped(t *testing.T) {
	for _, key := range []string{"GUIDE", "STOP", "RECORD", "7", "KEY_5", ""} {
		if code, ok := MapKey(key); ok {
			t.Errorf("MapKey(%q) = %+v, want unmapped", key, code)
		}
	}
}
