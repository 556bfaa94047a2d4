//go:build windows
// +build windows

package main

import (
	"testing"
)

func withFakeSpeed(t *testing.T) *[]int {
	t.Helper()
	var applied []int
	origApply := applyMouseSpeed
	applyMouseSpeed = func(speed int) { applied = append(applied, speed) }

	speedMu.Lock()
	origMode := speedMode
	speedMode = speedModeNormal
	speedMu.Unlock()

	t.Cleanup(func() {
		applyMouseSpeed = origApply
		speedMu.Lock()
		speedMode = origMode
		speedMu.Unlock()
	})
	return &applied
}

func TestToggleDPIAlternates(t *testing.T) {
	applied := withFakeSpeed(t)

	toggleDPI(18, 10)
	if currentSpeedMode() != speedModeFast {
		t.Fatalf("mode = %q after first toggle, want FAST", currentSpeedMode())
	}
	toggleDPI(18, 10)
	if currentSpeedMode() != speedModeNormal {
		t.Fatalf("mode = %q after second toggle, want NORMAL", currentSpeedMode())
	}
	toggleDPI(18, 10)
	toggleDPI(18, 10)

	want := []int{18, 10, 18, 10}
	if len(*applied) != len(want) {
		t.Fatalf("applied %v, want %v", *applied, want)
	}
	for i, v := range want {
		if (*applied)[i] != v {
			t.Errorf("applied[%d] = %d, want %d", i, (*applied)[i], v)
		}
	}
}

func TestToggleDPIClampsAppliedSpeed(t *testing.T) {
	applied := withFakeSpeed(t)

	toggleDPI(99, -4)
	toggleDPI(99, -4)

	if (*applied)[0] != 20 {
		t.Errorf("fast speed = %d, want clamp to 20", (*applied)[0])
	}
	if (*applied)[1] != 1 {
		t.Errorf("normal speed = %d, want clamp to 1", (*applied)[1])
	}
}

func TestDispatchButtonToggleDPIUsesActiveProfile(t *testing.T) {
	useTempConfig(t)
	loadConfig()
	applied := withFakeSpeed(t)

	storeProfile("Mode A", Profile{
		Mic:       ButtonConfig{Action: ActionToggleDPI},
		Search:    defaultProfile().Search,
		Side:      defaultProfile().Side,
		DPIFast:   16,
		DPINormal: 4,
	})

	dispatchButton("mic", true)
	if len(*applied) != 1 || (*applied)[0] != 16 {
		t.Fatalf("applied = %v, want [16]", *applied)
	}

	// Release has no effect for toggle_dpi.
	dispatchButton("mic", false)
	if len(*applied) != 1 {
		t.Errorf("release applied speed: %v", *applied)
	}
}

func TestDispatchButtonUnknownKeyIsNoop(t *testing.T) {
	useTempConfig(t)
	loadConfig()
	applied := withFakeSpeed(t)

	dispatchButton("wheel", true)
	dispatchButton("wheel", false)
	if len(*applied) != 0 {
		t.Errorf("unknown key applied %v", *applied)
	}
}

func TestExecutePressEmptyParamsAreNoops(t *testing.T) {
	// Empty URL and empty shortcut must not spawn anything; a panic or a
	// spawned effect would surface through the logger, so just exercising
	// the paths is enough here.
	executePress(ButtonConfig{Action: ActionOpenURL}, defaultProfile())
	executePress(ButtonConfig{Action: ActionKeyPress}, defaultProfile())
	executePress(ButtonConfig{Action: "bogus"}, defaultProfile())
	executeRelease(ButtonConfig{Action: ActionOpenURL})
	executeRelease(ButtonConfig{Action: ActionKeyPress})
	executeRelease(ButtonConfig{Action: ActionToggleDPI})
}
