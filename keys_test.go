//go:build windows
// +build windows

package main

import (
	"testing"
)

func TestParseKeyCombo(t *testing.T) {
	tests := []struct {
		spec string
		want keyCombo
	}{
		{"alt+left", keyCombo{alt: true, vk: 0x25}},
		{"ctrl+alt+shift+q", keyCombo{ctrl: true, alt: true, shift: true, vk: 0x51}},
		{"ctrl+c", keyCombo{ctrl: true, vk: 0x43}},
		{"f5", keyCombo{vk: 0x74}},
		{"f12", keyCombo{vk: 0x7B}},
		{"win+d", keyCombo{win: true, vk: 0x44}},
		{"shift+3", keyCombo{shift: true, vk: 0x33}},
		{"enter", keyCombo{vk: 0x0D}},
		{"Ctrl+Alt+Left", keyCombo{ctrl: true, alt: true, vk: 0x25}},
		{"  ctrl + x ", keyCombo{ctrl: true, vk: 0x58}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseKeyCombo(tt.spec)
			if err != nil {
				t.Fatalf("parseKeyCombo(%q) error: %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("parseKeyCombo(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseKeyComboErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"ctrl+",
		"ctrl",
		"bogus+x",
		"ctrl+unknownkey",
		"f13",
		"f0",
	}
	for _, spec := range tests {
		t.Run(spec, func(t *testing.T) {
			if _, err := parseKeyCombo(spec); err == nil {
				t.Errorf("parseKeyCombo(%q) succeeded, want error", spec)
			}
		})
	}
}

func TestLookupKey(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		{"a", 0x41},
		{"z", 0x5A},
		{"0", 0x30},
		{"9", 0x39},
		{"f1", 0x70},
		{"space", 0x20},
		{"escape", 0x1B},
		{"esc", 0x1B},
	}
	for _, tt := range tests {
		got, err := lookupKey(tt.token)
		if err != nil {
			t.Errorf("lookupKey(%q) error: %v", tt.token, err)
			continue
		}
		if got != tt.want {
			t.Errorf("lookupKey(%q) = 0x%X, want 0x%X", tt.token, got, tt.want)
		}
	}
}
