//go:build windows
// +build windows

package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// useTempConfig points the config globals at a temp dir and resets the
// in-memory state for one test.
func useTempConfig(t *testing.T) {
	t.Helper()
	origFile := configFile
	origConfig := config
	configFile = filepath.Join(t.TempDir(), "config.json")
	t.Cleanup(func() {
		configFile = origFile
		config = origConfig
	})
}

func TestLoadConfigMissingFileDefaults(t *testing.T) {
	useTempConfig(t)

	loadConfig()

	if config.ActiveProfile != "Mode A" {
		t.Fatalf("active profile = %q, want Mode A", config.ActiveProfile)
	}
	p, ok := config.Profiles["Mode A"]
	if !ok {
		t.Fatal("default profile missing")
	}
	if p.DPIFast != 18 || p.DPINormal != 10 {
		t.Errorf("DPI = %d/%d, want 18/10", p.DPIFast, p.DPINormal)
	}
	if p.Mic.Action != ActionVoiceTyping {
		t.Errorf("mic action = %q, want %q", p.Mic.Action, ActionVoiceTyping)
	}
	if p.Search.Action != ActionOpenURL || p.Search.Param != "https://www.google.com" {
		t.Errorf("search = %+v, want open_url google", p.Search)
	}
	if p.Side.Action != ActionKeyPress || p.Side.Param != "alt+left" {
		t.Errorf("side = %+v, want key_press alt+left", p.Side)
	}
}

func TestLoadConfigParseFailureDefaults(t *testing.T) {
	useTempConfig(t)
	if err := os.WriteFile(configFile, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	loadConfig()

	if config.ActiveProfile != "Mode A" {
		t.Fatalf("active profile = %q, want Mode A after parse failure", config.ActiveProfile)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	useTempConfig(t)
	loadConfig()

	custom := Profile{
		Mic:       ButtonConfig{Action: ActionToggleDPI},
		Search:    ButtonConfig{Action: ActionKeyPress, Param: "ctrl+shift+t"},
		Side:      ButtonConfig{Action: ActionOpenURL, Param: "https://example.com"},
		DPIFast:   20,
		DPINormal: 5,
	}
	storeProfile("Gaming", custom)
	if !saveConfig() {
		t.Fatal("saveConfig failed")
	}

	saved := configSnapshot()
	config = GlobalConfig{}
	loadConfig()

	if config.ActiveProfile != "Gaming" {
		t.Fatalf("active profile = %q, want Gaming", config.ActiveProfile)
	}
	if !reflect.DeepEqual(configSnapshot(), saved) {
		t.Errorf("reloaded config = %+v, want %+v", configSnapshot(), saved)
	}
	if !reflect.DeepEqual(config.Profiles["Gaming"], custom) {
		t.Errorf("profile = %+v, want %+v", config.Profiles["Gaming"], custom)
	}
}

func TestNormalizeConfigSynthesizesActiveProfile(t *testing.T) {
	c := normalizeConfig(GlobalConfig{
		ActiveProfile: "Ghost",
		Profiles:      map[string]Profile{"Other": defaultProfile()},
	})
	if _, ok := c.Profiles["Ghost"]; !ok {
		t.Error("active profile not synthesized")
	}
	if _, ok := c.Profiles["Mode A"]; !ok {
		t.Error("permanent default profile not present")
	}
}

func TestNormalizeProfileFillsMissingButtons(t *testing.T) {
	p := normalizeProfile(Profile{DPIFast: 25, DPINormal: -3})
	def := defaultProfile()
	if p.Mic != def.Mic || p.Search != def.Search || p.Side != def.Side {
		t.Errorf("buttons not defaulted: %+v", p)
	}
	if p.DPIFast != 20 {
		t.Errorf("DPIFast = %d, want clamp to 20", p.DPIFast)
	}
	if p.DPINormal != 1 {
		t.Errorf("DPINormal = %d, want clamp to 1", p.DPINormal)
	}
}

func TestAddProfile(t *testing.T) {
	useTempConfig(t)
	loadConfig()

	if err := addProfile(""); err != errEmptyProfileName {
		t.Errorf("add empty = %v, want errEmptyProfileName", err)
	}
	if err := addProfile("Mode A"); err != errProfileExists {
		t.Errorf("add duplicate = %v, want errProfileExists", err)
	}
	if len(config.Profiles) != 1 {
		t.Fatalf("rejected adds changed state: %d profiles", len(config.Profiles))
	}

	storeProfile("Mode A", Profile{
		Mic:       ButtonConfig{Action: ActionToggleDPI},
		Search:    defaultProfile().Search,
		Side:      defaultProfile().Side,
		DPIFast:   15,
		DPINormal: 7,
	})
	if err := addProfile("Mode B"); err != nil {
		t.Fatalf("add = %v", err)
	}
	if config.ActiveProfile != "Mode B" {
		t.Errorf("active = %q, want Mode B", config.ActiveProfile)
	}
	// Seeded as a copy of the previously active profile.
	if config.Profiles["Mode B"].Mic.Action != ActionToggleDPI {
		t.Errorf("new profile not seeded from active: %+v", config.Profiles["Mode B"])
	}
	if config.Profiles["Mode B"].DPIFast != 15 {
		t.Errorf("new profile DPIFast = %d, want 15", config.Profiles["Mode B"].DPIFast)
	}
}

func TestDeleteProfile(t *testing.T) {
	useTempConfig(t)
	loadConfig()

	if err := deleteProfile("Mode A"); err != errDefaultProfile {
		t.Errorf("delete default = %v, want errDefaultProfile", err)
	}
	if err := deleteProfile("Nope"); err != errNoSuchProfile {
		t.Errorf("delete missing = %v, want errNoSuchProfile", err)
	}

	if err := addProfile("Temp"); err != nil {
		t.Fatal(err)
	}
	if config.ActiveProfile != "Temp" {
		t.Fatalf("active = %q, want Temp", config.ActiveProfile)
	}
	if err := deleteProfile("Temp"); err != nil {
		t.Fatalf("delete = %v", err)
	}
	if _, ok := config.Profiles["Temp"]; ok {
		t.Error("profile not removed")
	}
	if config.ActiveProfile != "Mode A" {
		t.Errorf("active = %q, want fallback to Mode A", config.ActiveProfile)
	}
}

func TestSelectProfile(t *testing.T) {
	useTempConfig(t)
	loadConfig()

	if err := selectProfile("Nope"); err != errNoSuchProfile {
		t.Errorf("select missing = %v, want errNoSuchProfile", err)
	}
	if err := addProfile("Other"); err != nil {
		t.Fatal(err)
	}
	if err := selectProfile("Mode A"); err != nil {
		t.Fatalf("select = %v", err)
	}
	if activeProfileName() != "Mode A" {
		t.Errorf("active = %q, want Mode A", activeProfileName())
	}
}

func TestClampDPI(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {-5, 1}, {1, 1}, {10, 10}, {20, 20}, {21, 20}, {100, 20},
	}
	for _, tt := range tests {
		if got := clampDPI(tt.in); got != tt.want {
			t.Errorf("clampDPI(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestButtonFor(t *testing.T) {
	p := defaultProfile()
	for _, key := range []string{"mic", "search", "side"} {
		if _, ok := p.buttonFor(key); !ok {
			t.Errorf("buttonFor(%q) not found", key)
		}
	}
	if _, ok := p.buttonFor("wheel"); ok {
		t.Error("buttonFor(wheel) should not resolve")
	}
}
