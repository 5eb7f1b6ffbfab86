package session

import (
	"strings"

	"github.com/nerrad567/gray-logic-vizio/internal/smartcast"
)

// keyMap translates abstract remote-button identifiers into SmartCast
// key names. Buttons with no SmartCast equivalent (digits, GUIDE,
// STOP, RECORD) are deliberately absent; sending them is a logged
// no-op, not an error.
var keyMap = map[string]string{
	"VOLUME_UP":    "VOL_UP",
	"VOLUME_DOWN":  "VOL_DOWN",
	"MUTE":         "MUTE_TOGGLE",
	"POWER":        "POW_TOGGLE",
	"UP":           "UP",
	"DOWN":         "DOWN",
	"LEFT":         "LEFT",
	"RIGHT":        "RIGHT",
	"OK":           "OK",
	"ENTER":        "OK",
	"BACK":         "BACK",
	"HOME":         "HOME",
	"MENU":         "MENU",
	"INFO":         "INFO",
	"EXIT":         "EXIT",
	"PLAY":         "PLAY",
	"PAUSE":        "PAUSE",
	"FORWARD":      "SEEK_FWD",
	"REWIND":       "SEEK_BACK",
	"CHANNEL_UP":   "CH_UP",
	"CHANNEL_DOWN": "CH_DOWN",
	"PREVIOUS":     "CH_PREV",
	"CC":           "CC_TOGGLE",
	"INPUT":        "INPUT_NEXT",
}

// MapKey resolves an abstract key to a SmartCast key code. The
// optional "KEY_" prefix used by some hubs is stripped, and matching
// is case-insensitive.
func MapKey(key string) (smartcast.KeyCode, bool) {
	name := strings.ToUpper(strings.TrimPrefix(strings.ToUpper(key), "KEY_"))

	target, ok := keyMap[name]
	if !ok {
		// Allow native SmartCast key names to pass straight through.
		return smartcast.LookupKey(name)
	}

	return smartcast.LookupKey(target)
}
