package session

import (
	"testing"

	"github.com/nerrad567/gray-logic-vizio/internal/device"
)

func statePtr(s device.PowerState) *device.PowerState { return &s }
func strPtr(s string) *string                         { return &s }

func TestReconcilerFirstValueAlwaysEmits(t *testing.T) {
	r := &reconciler{}

	out, changed := r.diff(Update{State: statePtr(device.PowerStateOn)})
	if !changed || out.State == nil || *out.State != device.PowerStateOn {
		t.Errorf("first state diff = %+v changed=%v", out, changed)
	}
}

func TestReconcilerSuppressesUnchanged(t *testing.T) {
	r := &reconciler{}

	r.diff(Update{State: statePtr(device.PowerStateOn), Source: strPtr("HDMI-1")})

	out, changed := r.diff(Update{State: statePtr(device.PowerStateOn), Source: strPtr("HDMI-1")})
	if changed {
		t.Errorf("unchanged diff emitted %+v", out)
	}
}

func TestReconcilerEmitsOnlyChangedFields(t *testing.T) {
	r := &reconciler{}
	r.diff(Update{State: statePtr(device.PowerStateOn), Source: strPtr("HDMI-1")})

	out, changed := r.diff(Update{State: statePtr(device.PowerStateOn), Source: strPtr("Netflix")})
	if !changed {
		t.Fatal("changed source not emitted")
	}
	if out.State != nil {
		t.Error("unchanged state re-emitted")
	}
	if out.Source == nil || *out.Source != "Netflix" {
		t.Errorf("source diff = %+v", out)
	}
}

func TestReconcilerSourceListByValue(t *testing.T) {
	r := &reconciler{}

	if _, changed := r.diff(Update{SourceList: []string{"HDMI-1", "Netflix"}}); !changed {
		t.Fatal("first source list not emitted")
	}

	// Equal by value, different slice identity: suppressed.
	if out, changed := r.diff(Update{SourceList: []string{"HDMI-1", "Netflix"}}); changed {
		t.Errorf("identical source list emitted %+v", out)
	}

	if _, changed := r.diff(Update{SourceList: []string{"HDMI-1", "HDMI-2", "Netflix"}}); !changed {
		t.Error("grown source list not emitted")
	}
}

func TestReconcilerEmptyUpdate(t *testing.T) {
	r := &reconciler{}
	if out, changed := r.diff(Update{}); changed {
		t.Errorf("empty update produced diff %+v", out)
	}
}
