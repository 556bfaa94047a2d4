package main

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// Action codes stored in config.json. The GUI shows friendly names,
// the wire format keeps the snake_case codes from the original file layout.
const (
	ActionVoiceTyping = "voice_typing"
	ActionOpenURL     = "open_url"
	ActionKeyPress    = "key_press"
	ActionToggleDPI   = "toggle_dpi"
)

const defaultProfileName = "Mode A"

const (
	dpiMin = 1
	dpiMax = 20
)

type ButtonConfig struct {
	Action string `json:"action"`
	Param  string `json:"param"`
}

type Profile struct {
	Mic       ButtonConfig `json:"mic"`
	Search    ButtonConfig `json:"search"`
	Side      ButtonConfig `json:"side"`
	DPIFast   int          `json:"dpi_fast"`
	DPINormal int          `json:"dpi_normal"`
}

type GlobalConfig struct {
	ActiveProfile    string             `json:"active_profile"`
	Profiles         map[string]Profile `json:"profiles"`
	StartWithWindows bool               `json:"start_with_windows"`
}

var (
	configMu sync.Mutex
	config   GlobalConfig
)

var (
	errEmptyProfileName = errors.New("profile name is empty")
	errProfileExists    = errors.New("profile already exists")
	errNoSuchProfile    = errors.New("no such profile")
	errDefaultProfile   = errors.New("the default profile cannot be deleted")
)

func defaultProfile() Profile {
	return Profile{
		Mic:       ButtonConfig{Action: ActionVoiceTyping},
		Search:    ButtonConfig{Action: ActionOpenURL, Param: "https://www.google.com"},
		Side:      ButtonConfig{Action: ActionKeyPress, Param: "alt+left"},
		DPIFast:   18,
		DPINormal: 10,
	}
}

func clampDPI(v int) int {
	if v < dpiMin {
		return dpiMin
	}
	if v > dpiMax {
		return dpiMax
	}
	return v
}

func isKnownAction(a string) bool {
	switch a {
	case ActionVoiceTyping, ActionOpenURL, ActionKeyPress, ActionToggleDPI:
		return true
	}
	return false
}

// normalizeProfile fills in anything a hand-edited or older config file left
// out so every profile always carries all three buttons and sane DPI values.
func normalizeProfile(p Profile) Profile {
	def := defaultProfile()
	if !isKnownAction(p.Mic.Action) {
		p.Mic = def.Mic
	}
	if !isKnownAction(p.Search.Action) {
		p.Search = def.Search
	}
	if !isKnownAction(p.Side.Action) {
		p.Side = def.Side
	}
	if p.DPIFast == 0 {
		p.DPIFast = def.DPIFast
	}
	if p.DPINormal == 0 {
		p.DPINormal = def.DPINormal
	}
	p.DPIFast = clampDPI(p.DPIFast)
	p.DPINormal = clampDPI(p.DPINormal)
	return p
}

// normalizeConfig repairs the loaded structure: profiles map present, every
// profile normalized, and active_profile resolving to an existing entry
// (synthesized under that name when missing).
func normalizeConfig(c GlobalConfig) GlobalConfig {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	for name, p := range c.Profiles {
		c.Profiles[name] = normalizeProfile(p)
	}
	if c.ActiveProfile == "" {
		c.ActiveProfile = defaultProfileName
	}
	if _, ok := c.Profiles[c.ActiveProfile]; !ok {
		c.Profiles[c.ActiveProfile] = defaultProfile()
	}
	if _, ok := c.Profiles[defaultProfileName]; !ok {
		c.Profiles[defaultProfileName] = defaultProfile()
	}
	return c
}

func loadConfig() {
	config = normalizeConfig(GlobalConfig{})

	data, err := os.ReadFile(configFile)
	if err != nil {
		return
	}
	var c GlobalConfig
	if err := json.Unmarshal(data, &c); err != nil {
		if logger != nil {
			logger.Printf("[CONFIG] parse failure, falling back to defaults: %v", err)
		}
		return
	}
	config = normalizeConfig(c)
}

func saveConfig() bool {
	configMu.Lock()
	data, err := json.MarshalIndent(config, "", "  ")
	configMu.Unlock()
	if err != nil {
		return false
	}
	fileMu.Lock()
	err = os.WriteFile(configFile, data, 0644)
	fileMu.Unlock()
	if err != nil {
		if logger != nil {
			logger.Printf("[CONFIG] save failed: %v", err)
		}
		return false
	}
	return true
}

// activeProfile returns a copy of the currently selected profile.
func activeProfile() Profile {
	configMu.Lock()
	defer configMu.Unlock()
	p, ok := config.Profiles[config.ActiveProfile]
	if !ok {
		return defaultProfile()
	}
	return p
}

func activeProfileName() string {
	configMu.Lock()
	defer configMu.Unlock()
	return config.ActiveProfile
}

func selectProfile(name string) error {
	configMu.Lock()
	defer configMu.Unlock()
	if _, ok := config.Profiles[name]; !ok {
		return errNoSuchProfile
	}
	config.ActiveProfile = name
	return nil
}

// addProfile creates a new profile seeded from the active one and selects it.
func addProfile(name string) error {
	configMu.Lock()
	defer configMu.Unlock()
	if name == "" {
		return errEmptyProfileName
	}
	if _, ok := config.Profiles[name]; ok {
		return errProfileExists
	}
	seed, ok := config.Profiles[config.ActiveProfile]
	if !ok {
		seed = defaultProfile()
	}
	config.Profiles[name] = seed
	config.ActiveProfile = name
	return nil
}

// deleteProfile removes a profile and drops the selection back to the
// permanent default.
func deleteProfile(name string) error {
	configMu.Lock()
	defer configMu.Unlock()
	if name == defaultProfileName {
		return errDefaultProfile
	}
	if _, ok := config.Profiles[name]; !ok {
		return errNoSuchProfile
	}
	delete(config.Profiles, name)
	if config.ActiveProfile == name {
		config.ActiveProfile = defaultProfileName
	}
	return nil
}

// storeProfile writes an edited profile into its slot and makes it active.
func storeProfile(name string, p Profile) {
	configMu.Lock()
	defer configMu.Unlock()
	if name == "" {
		name = config.ActiveProfile
	}
	config.Profiles[name] = normalizeProfile(p)
	config.ActiveProfile = name
}

func setStartWithWindows(enabled bool) {
	configMu.Lock()
	config.StartWithWindows = enabled
	configMu.Unlock()
}

func startWithWindowsEnabled() bool {
	configMu.Lock()
	defer configMu.Unlock()
	return config.StartWithWindows
}

// configSnapshot returns a deep copy for the HTTP layer.
func configSnapshot() GlobalConfig {
	configMu.Lock()
	defer configMu.Unlock()
	out := config
	out.Profiles = make(map[string]Profile, len(config.Profiles))
	for name, p := range config.Profiles {
		out.Profiles[name] = p
	}
	return out
}

// buttonFor maps a logical button key to its config within the profile.
func (p Profile) buttonFor(key string) (ButtonConfig, bool) {
	switch key {
	case "mic":
		return p.Mic, true
	case "search":
		return p.Search, true
	case "side":
		return p.Side, true
	}
	return ButtonConfig{}, false
}
