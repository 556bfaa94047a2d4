//go:build windows
// +build windows

package main

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// TranscriptEntry is one completed voice-typing result.
type TranscriptEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// ActionEvent marks a non-voice action worth showing in the GUI timeline:
// profile switches, DPI toggles, saves.
type ActionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Detail    string    `json:"detail,omitempty"`
}

type HistoryResponse struct {
	Transcripts []TranscriptEntry `json:"transcripts"`
	Events      []ActionEvent     `json:"events"`
}

var (
	historyMu          sync.RWMutex
	historyTranscripts []TranscriptEntry
	historyEvents      []ActionEvent
)

const (
	maxHistoryTranscripts = 50
	maxHistoryEvents      = 128
)

func recordTranscript(text string) {
	historyMu.Lock()
	historyTranscripts = append(historyTranscripts, TranscriptEntry{
		Timestamp: time.Now(),
		Text:      text,
	})
	if len(historyTranscripts) > maxHistoryTranscripts {
		historyTranscripts = historyTranscripts[len(historyTranscripts)-maxHistoryTranscripts:]
	}
	historyMu.Unlock()
	go saveHistory()
}

func recordActionEvent(kind, detail string) {
	historyMu.Lock()
	historyEvents = append(historyEvents, ActionEvent{
		Timestamp: time.Now(),
		Type:      kind,
		Detail:    detail,
	})
	if len(historyEvents) > maxHistoryEvents {
		historyEvents = historyEvents[len(historyEvents)-maxHistoryEvents:]
	}
	historyMu.Unlock()
}

func historySnapshot() HistoryResponse {
	historyMu.RLock()
	defer historyMu.RUnlock()

	resp := HistoryResponse{
		Transcripts: make([]TranscriptEntry, len(historyTranscripts)),
		Events:      make([]ActionEvent, len(historyEvents)),
	}
	copy(resp.Transcripts, historyTranscripts)
	copy(resp.Events, historyEvents)
	return resp
}

// Persistence is best effort, same as the config file: a lost history is an
// inconvenience, not an error the user needs to see.

type persistedHistory struct {
	Transcripts []TranscriptEntry `json:"transcripts"`
}

func loadHistory() {
	data, err := os.ReadFile(historyFile)
	if err != nil {
		return
	}
	var ph persistedHistory
	if err := json.Unmarshal(data, &ph); err != nil {
		return
	}
	historyMu.Lock()
	historyTranscripts = ph.Transcripts
	if len(historyTranscripts) > maxHistoryTranscripts {
		historyTranscripts = historyTranscripts[len(historyTranscripts)-maxHistoryTranscripts:]
	}
	historyMu.Unlock()
}

func saveHistory() {
	historyMu.RLock()
	ph := persistedHistory{Transcripts: make([]TranscriptEntry, len(historyTranscripts))}
	copy(ph.Transcripts, historyTranscripts)
	historyMu.RUnlock()

	data, err := json.MarshalIndent(ph, "", "  ")
	if err != nil {
		return
	}
	fileMu.Lock()
	_ = os.WriteFile(historyFile, data, 0644)
	fileMu.Unlock()
}
