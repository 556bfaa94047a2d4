//go:build windows
// +build windows

package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/sstallion/go-hid"
)

func setupLogging() {
	_ = os.MkdirAll(filepath.Dir(logFile), 0755)
	logFileHandle, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		logFileHandle, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Printf("Failed to open log file: %v", err)
			return
		}
	}
	log.SetOutput(logFileHandle)
	log.SetFlags(log.LstdFlags)
	logger = log.New(logFileHandle, "", log.LstdFlags)
	logger.Printf("=== AiMouse Control Center v%s Started ===", currentVersion)
	logger.Printf("Log file location: %s", logFile)
	scanMatchingDevices()
}

// scanMatchingDevices dumps the mouse interfaces visible at startup so a
// support log shows what the enumeration saw.
func scanMatchingDevices() {
	if logger == nil {
		return
	}
	logger.Printf("=== Scanning for AiMouse interfaces (VID 0x%04x PID 0x%04x) ===", aimouseVendorID, aimouseProductID)
	found := 0
	hid.Enumerate(aimouseVendorID, aimouseProductID, func(info *hid.DeviceInfo) error {
		logger.Printf("Match - If#: %d, UsagePage: 0x%04x, Usage: 0x%04x, Prod: %q, Path: %s",
			info.InterfaceNbr, info.UsagePage, info.Usage, info.ProductStr, info.Path)
		found++
		return nil
	})
	if found == 0 {
		logger.Printf("No matching interfaces found; GUI-only edit mode")
	}
}
