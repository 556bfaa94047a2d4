package main

import (
	"sync"
)

// Speed modes for the DPI toggle action.
const (
	speedModeNormal = "NORMAL"
	speedModeFast   = "FAST"
)

var (
	speedMu   sync.Mutex
	speedMode = speedModeNormal
)

// applyMouseSpeed is swapped out in tests.
var applyMouseSpeed = setMouseSpeed

// spawnEffect runs a fire-and-forget side effect on its own goroutine with a
// recover guard and an error line instead of a silent drop.
func spawnEffect(name string, fn func() error) {
	go func() {
		defer safeDefer(name)
		if err := fn(); err != nil {
			if logger != nil {
				logger.Printf("[EFFECT] %s: %v", name, err)
			}
		}
	}()
}

// dispatchButton is the listener's callback. It must return in microseconds,
// so anything that can block runs through spawnEffect.
func dispatchButton(key string, down bool) {
	p := activeProfile()
	cfg, ok := p.buttonFor(key)
	if !ok {
		return
	}
	if down {
		executePress(cfg, p)
	} else {
		executeRelease(cfg)
	}
}

func executePress(cfg ButtonConfig, p Profile) {
	switch cfg.Action {
	case ActionVoiceTyping:
		startVoiceCapture()
	case ActionOpenURL:
		if cfg.Param == "" {
			return
		}
		url := cfg.Param
		spawnEffect("open_url", func() error {
			return openURL(url)
		})
	case ActionKeyPress:
		if cfg.Param == "" {
			return
		}
		combo := cfg.Param
		spawnEffect("key_press", func() error {
			return sendKeyCombo(combo)
		})
	case ActionToggleDPI:
		toggleDPI(p.DPIFast, p.DPINormal)
	}
}

// Only voice typing cares about release; everything else already fired on
// press.
func executeRelease(cfg ButtonConfig) {
	if cfg.Action != ActionVoiceTyping {
		return
	}
	spawnEffect("voice_stop", func() error {
		stopVoiceCapture()
		return nil
	})
}

// toggleDPI flips between the profile's two pointer speeds. The applied value
// is clamped to the 1-20 range SystemParametersInfo accepts.
func toggleDPI(fast, normal int) {
	speedMu.Lock()
	var speed int
	if speedMode == speedModeNormal {
		speedMode = speedModeFast
		speed = fast
	} else {
		speedMode = speedModeNormal
		speed = normal
	}
	mode := speedMode
	speedMu.Unlock()

	applyMouseSpeed(clampDPI(speed))
	if logger != nil {
		logger.Printf("[DPI] mode=%s speed=%d", mode, clampDPI(speed))
	}
	recordActionEvent("dpi", mode)
	broadcast(map[string]interface{}{"dpiMode": mode})
}

func currentSpeedMode() string {
	speedMu.Lock()
	defer speedMu.Unlock()
	return speedMode
}
