package main

import (
	"encoding/hex"
	"sync"
	"time"
)

// Raw report snapshot for the GUI debug panel. Listeners stash the most
// recent report here; /api/last-report serves it hex-encoded.

var (
	rawReportMu   sync.Mutex
	lastRawReport []byte
	lastReportAt  time.Time
)

func setLastRawReport(buf []byte) {
	if len(buf) == 0 {
		return
	}
	dup := make([]byte, len(buf))
	copy(dup, buf)
	rawReportMu.Lock()
	lastRawReport = dup
	lastReportAt = time.Now()
	rawReportMu.Unlock()
}

func getLastRawReport() ([]byte, time.Time, bool) {
	rawReportMu.Lock()
	defer rawReportMu.Unlock()
	if len(lastRawReport) == 0 {
		return nil, time.Time{}, false
	}
	dup := make([]byte, len(lastRawReport))
	copy(dup, lastRawReport)
	return dup, lastReportAt, true
}

// lastReportSummary decodes the snapshot for the debug endpoint.
func lastReportSummary() map[string]interface{} {
	buf, at, ok := getLastRawReport()
	if !ok {
		return map[string]interface{}{"present": false}
	}
	out := map[string]interface{}{
		"present": true,
		"hex":     hex.EncodeToString(buf),
		"len":     len(buf),
		"at":      at.Format(time.RFC3339),
	}
	if len(buf) > reportCodeIndex {
		code := buf[reportCodeIndex]
		out["code"] = int(code)
		if key, isDown := downCodes[code]; isDown {
			out["button"] = key
			out["edge"] = "down"
		} else if key, isUp := downCodes[code-releaseOffset]; isUp {
			out["button"] = key
			out["edge"] = "up"
		}
	}
	return out
}
