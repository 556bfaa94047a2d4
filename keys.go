//go:build windows
// +build windows

package main

import (
	"fmt"
	"runtime"
	"strings"
	"time"
	"unsafe"

	"github.com/atotto/clipboard"
	"github.com/micmonay/keybd_event"
)

// keyCombo is a parsed "ctrl+alt+left" style hotkey string.
type keyCombo struct {
	ctrl  bool
	alt   bool
	shift bool
	win   bool
	vk    int
}

// Windows virtual-key codes for the named keys the GUI accepts. Letters,
// digits and F-keys are derived in parseKeyCombo instead of listed here.
var namedKeys = map[string]int{
	"left":   0x25,
	"up":     0x26,
	"right":  0x27,
	"down":   0x28,
	"space":  0x20,
	"enter":  0x0D,
	"esc":    0x1B,
	"escape": 0x1B,
	"tab":    0x09,
	"home":   0x24,
	"end":    0x23,
	"delete": 0x2E,
}

func parseKeyCombo(spec string) (keyCombo, error) {
	var combo keyCombo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(spec)), "+")
	if len(parts) == 0 || parts[0] == "" {
		return combo, fmt.Errorf("empty key combination")
	}
	for i, raw := range parts {
		token := strings.TrimSpace(raw)
		last := i == len(parts)-1
		switch token {
		case "ctrl", "control":
			combo.ctrl = true
			continue
		case "alt":
			combo.alt = true
			continue
		case "shift":
			combo.shift = true
			continue
		case "win", "super":
			combo.win = true
			continue
		}
		if !last {
			return combo, fmt.Errorf("unknown modifier %q in %q", token, spec)
		}
		vk, err := lookupKey(token)
		if err != nil {
			return combo, err
		}
		combo.vk = vk
	}
	if combo.vk == 0 {
		return combo, fmt.Errorf("no key in combination %q", spec)
	}
	return combo, nil
}

func lookupKey(token string) (int, error) {
	if vk, ok := namedKeys[token]; ok {
		return vk, nil
	}
	if len(token) == 1 {
		c := token[0]
		if c >= 'a' && c <= 'z' {
			return 0x41 + int(c-'a'), nil
		}
		if c >= '0' && c <= '9' {
			return 0x30 + int(c-'0'), nil
		}
	}
	if strings.HasPrefix(token, "f") {
		var n int
		if _, err := fmt.Sscanf(token, "f%d", &n); err == nil && n >= 1 && n <= 12 {
			return 0x70 + n - 1, nil
		}
	}
	return 0, fmt.Errorf("unknown key %q", token)
}

// sendKeyCombo emits the configured shortcut into whatever has focus.
func sendKeyCombo(spec string) error {
	combo, err := parseKeyCombo(spec)
	if err != nil {
		return err
	}
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.HasCTRL(combo.ctrl)
	kb.HasALT(combo.alt)
	kb.HasSHIFT(combo.shift)
	kb.HasSuper(combo.win)
	kb.SetKeys(combo.vk)
	return kb.Launching()
}

// typeText writes text to the clipboard, pastes it with Ctrl+V and restores
// the previous clipboard contents. Pasting survives any keyboard layout,
// unlike per-character key emulation.
func typeText(text string) error {
	if text == "" {
		return nil
	}
	orig, _ := clipboard.ReadAll()
	if err := clipboard.WriteAll(text); err != nil {
		return err
	}
	time.Sleep(80 * time.Millisecond)

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.HasCTRL(true)
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)
	_ = clipboard.WriteAll(orig)
	return nil
}

const (
	modAlt     = 0x0001
	modControl = 0x0002
	modShift   = 0x0004
	modWin     = 0x0008

	wmHotkey = 0x0312

	quitHotkeyID = 1
)

type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	PtX     int32
	PtY     int32
}

// registerQuitHotkey installs the process-wide Ctrl+Alt+Shift+Q shutdown
// hotkey. Registration and the message pump must share one OS thread.
func registerQuitHotkey(onQuit func()) {
	go func() {
		defer safeDefer("quitHotkey")
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		registerHotKey := user32.NewProc("RegisterHotKey")
		getMessage := user32.NewProc("GetMessageW")

		r, _, err := registerHotKey.Call(0, quitHotkeyID, modControl|modAlt|modShift, 'Q')
		if r == 0 {
			if logger != nil {
				logger.Printf("[HOTKEY] RegisterHotKey failed, quit hotkey disabled: %v", err)
			}
			return
		}
		if logger != nil {
			logger.Printf("[HOTKEY] registered ctrl+alt+shift+q")
		}

		var msg winMsg
		for {
			ret, _, _ := getMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) == -1 {
				if logger != nil {
					logger.Printf("[HOTKEY] GetMessageW error, exiting hotkey loop")
				}
				return
			}
			if msg.Message == wmHotkey && msg.WParam == quitHotkeyID {
				onQuit()
			}
		}
	}()
}
