//go:build windows
// +build windows

package main

import (
	"unsafe"
)

const (
	spiSetMouseSpeed = 0x0071
	spiGetMouseSpeed = 0x0070

	spifUpdateIniFile = 0x01
	spifSendChange    = 0x02
)

var (
	systemParametersInfo = user32.NewProc("SystemParametersInfoW")
)

// setMouseSpeed applies a pointer speed in the 1-20 range Windows uses.
// Failures are swallowed: a refused speed change is not worth surfacing.
func setMouseSpeed(speed int) {
	speed = clampDPI(speed)
	ret, _, err := systemParametersInfo.Call(
		spiSetMouseSpeed,
		0,
		uintptr(speed),
		spifUpdateIniFile|spifSendChange,
	)
	if ret == 0 && logger != nil {
		logger.Printf("[DPI] SystemParametersInfo(SPI_SETMOUSESPEED, %d) failed: %v", speed, err)
	}
}

// getMouseSpeed reads the current pointer speed, 0 when the call fails.
func getMouseSpeed() int {
	var speed int32
	ret, _, _ := systemParametersInfo.Call(
		spiGetMouseSpeed,
		0,
		uintptr(unsafe.Pointer(&speed)),
		0,
	)
	if ret == 0 {
		return 0
	}
	return int(speed)
}
