package main

import (
	"sync/atomic"
	"time"

	"github.com/sstallion/go-hid"
)

// Hii AiMouse identifiers. The mouse exposes several HID interfaces; the
// side-button events can arrive on any of them, so every match gets its own
// listener.
const (
	aimouseVendorID  uint16 = 0x95F1
	aimouseProductID uint16 = 0xA1B6
)

// Raw event codes carried at byte 5 of the input report. Each button's
// release code sits one above its press code.
const (
	reportCodeIndex = 5
	releaseOffset   = 1

	codeMicDown    byte = 33
	codeSearchDown byte = 35
	codeSideDown   byte = 37
)

var downCodes = map[byte]string{
	codeMicDown:    "mic",
	codeSearchDown: "search",
	codeSideDown:   "side",
}

const (
	reportBufSize = 64
	idlePollDelay = 5 * time.Millisecond
)

var listenerCount int32

// buttonTracker turns a raw report stream into debounced press/release
// events. The mouse repeats the down code in every report while a button is
// held, so a per-code flag suppresses everything but the first transition.
// An up code with no recorded press is dropped as spurious.
type buttonTracker struct {
	pressed  map[byte]bool
	dispatch func(key string, down bool)
}

func newButtonTracker(dispatch func(key string, down bool)) *buttonTracker {
	return &buttonTracker{
		pressed:  make(map[byte]bool, len(downCodes)),
		dispatch: dispatch,
	}
}

func (t *buttonTracker) handleReport(buf []byte) {
	if len(buf) <= reportCodeIndex {
		return
	}
	code := buf[reportCodeIndex]

	if key, ok := downCodes[code]; ok {
		if !t.pressed[code] {
			t.pressed[code] = true
			t.dispatch(key, true)
		}
		return
	}

	down := code - releaseOffset
	if key, ok := downCodes[down]; ok {
		if t.pressed[down] {
			t.pressed[down] = false
			t.dispatch(key, false)
		}
	}
}

// enumerateMice returns the HID paths of every interface of the target mouse.
func enumerateMice() []string {
	var paths []string
	hid.Enumerate(aimouseVendorID, aimouseProductID, func(info *hid.DeviceInfo) error {
		paths = append(paths, info.Path)
		return nil
	})
	return paths
}

// startListeners spawns one monitor goroutine per matching interface and
// returns how many were started. Zero matches means GUI-only edit mode.
func startListeners() int {
	paths := enumerateMice()
	for _, p := range paths {
		go monitorMouse(p)
	}
	return len(paths)
}

// monitorMouse is the per-device polling loop. Device I/O failure ends this
// listener only; the GUI and any sibling listeners keep running.
func monitorMouse(path string) {
	defer safeDefer("monitorMouse")

	dev, err := hid.OpenPath(path)
	if err != nil {
		if logger != nil {
			logger.Printf("[HID] open %s failed: %v", path, err)
		}
		return
	}
	defer dev.Close()

	if err := dev.SetNonblock(true); err != nil {
		if logger != nil {
			logger.Printf("[HID] nonblocking mode on %s failed: %v", path, err)
		}
		return
	}

	atomic.AddInt32(&listenerCount, 1)
	defer atomic.AddInt32(&listenerCount, -1)

	tracker := newButtonTracker(dispatchButton)
	buf := make([]byte, reportBufSize)

	for {
		n, err := dev.Read(buf)
		if err != nil {
			if logger != nil {
				logger.Printf("[HID] listener on %s exiting: %v", path, err)
			}
			return
		}
		if n == 0 {
			time.Sleep(idlePollDelay)
			continue
		}
		setLastRawReport(buf[:n])
		tracker.handleReport(buf[:n])
	}
}

func activeListeners() int {
	return int(atomic.LoadInt32(&listenerCount))
}
