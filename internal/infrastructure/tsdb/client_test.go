package tsdb

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-vizio/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() with disabled config: got %v, want ErrDisabled", err)
	}
}

func TestConnectUnreachable(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:1",
		Token:   "test",
		Org:     "test",
		Bucket:  "test",
	})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() to unreachable server: got %v, want ErrConnectionFailed", err)
	}
}
