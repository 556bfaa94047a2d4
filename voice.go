//go:build windows
// +build windows

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"
)

const (
	captureSampleRate = 16000
	captureChunkSize  = 1024
	calibrateWindow   = 300 * time.Millisecond

	// stopVoiceCapture waits this long for the read loop to acknowledge the
	// stop signal before giving up on the session.
	stopAckTimeout = 2 * time.Second

	speechRequestTimeout = 30 * time.Second
)

// Speech endpoint configuration. Voice typing stays disabled until an
// endpoint is provided; the endpoint receives the WAV clip as a multipart
// upload and answers JSON carrying the transcript.
var (
	speechEndpoint = os.Getenv("AIMOUSE_SPEECH_URL")
	speechLanguage = envOr("AIMOUSE_SPEECH_LANG", "zh-TW")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// audioSource abstracts the microphone so the session logic is testable
// without PortAudio.
type audioSource interface {
	ReadChunk() ([]int16, error)
	SampleRate() int
	Close() error
}

// openAudioSource is swapped out in tests.
var openAudioSource = openMicrophone

type portaudioSource struct {
	stream *portaudio.Stream
	buf    []int16
}

func openMicrophone() (audioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	buf := make([]int16, captureChunkSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(captureSampleRate), len(buf), buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open microphone: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start microphone: %w", err)
	}
	return &portaudioSource{stream: stream, buf: buf}, nil
}

func (s *portaudioSource) ReadChunk() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		return nil, err
	}
	chunk := make([]int16, len(s.buf))
	copy(chunk, s.buf)
	return chunk, nil
}

func (s *portaudioSource) SampleRate() int { return captureSampleRate }

func (s *portaudioSource) Close() error {
	_ = s.stream.Stop()
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}

// captureSession is one push-to-talk recording. stop is the cancellation
// signal; loopDone is closed the moment the read loop has observed it, so the
// caller's wait is bounded by one chunk read. Transcription and typing keep
// running on the worker after the ack.
type captureSession struct {
	stop     chan struct{}
	loopDone chan struct{}
}

var (
	captureMu      sync.Mutex
	currentCapture *captureSession
)

// startVoiceCapture begins a session on button press. A second press while a
// session is active is rejected outright: with a single shared session there
// is no sane meaning for overlapping captures.
func startVoiceCapture() {
	if speechEndpoint == "" {
		if logger != nil {
			logger.Printf("[VOICE] voice typing disabled: AIMOUSE_SPEECH_URL not set")
		}
		return
	}

	captureMu.Lock()
	if currentCapture != nil {
		captureMu.Unlock()
		if logger != nil {
			logger.Printf("[VOICE] capture already active, ignoring start")
		}
		return
	}
	s := &captureSession{
		stop:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	currentCapture = s
	captureMu.Unlock()

	go s.run()
}

// stopVoiceCapture signals the session on button release and waits, bounded,
// for the read loop to wind down. Audio past the last completed chunk read is
// not part of the clip.
func stopVoiceCapture() {
	captureMu.Lock()
	s := currentCapture
	currentCapture = nil
	captureMu.Unlock()
	if s == nil {
		return
	}

	close(s.stop)
	select {
	case <-s.loopDone:
	case <-time.After(stopAckTimeout):
		if logger != nil {
			logger.Printf("[VOICE] capture loop did not acknowledge stop in %v", stopAckTimeout)
		}
	}
}

func captureActive() bool {
	captureMu.Lock()
	defer captureMu.Unlock()
	return currentCapture != nil
}

func (s *captureSession) run() {
	defer safeDefer("voiceCapture")
	defer s.finish()

	src, err := openAudioSource()
	if err != nil {
		if logger != nil {
			logger.Printf("[VOICE] microphone unavailable: %v", err)
		}
		return
	}
	defer src.Close()

	broadcast(map[string]interface{}{"capture": "recording"})
	if logger != nil {
		logger.Printf("[VOICE] recording (release the button to finish)")
	}

	frames := recordFrames(src, s.stop)
	close(s.loopDone)

	broadcast(map[string]interface{}{"capture": "transcribing"})

	clip, err := encodeWAV(frames, src.SampleRate())
	if err != nil {
		if logger != nil {
			logger.Printf("[VOICE] clip assembly failed: %v", err)
		}
		return
	}

	text, err := transcribe(clip)
	if err != nil {
		if logger != nil {
			logger.Printf("[VOICE] recognition failed: %v", err)
		}
		return
	}
	if text == "" {
		if logger != nil {
			logger.Printf("[VOICE] no speech recognized")
		}
		return
	}

	if logger != nil {
		logger.Printf("[VOICE] recognized: %s", text)
	}
	recordTranscript(text)
	broadcast(map[string]interface{}{"capture": "idle", "transcript": text})

	if err := typeText(text); err != nil {
		if logger != nil {
			logger.Printf("[VOICE] typing failed: %v", err)
		}
	}
}

func (s *captureSession) finish() {
	// The loop-exit ack must fire even on an early error return, or the
	// releasing side would block for the full timeout.
	select {
	case <-s.loopDone:
	default:
		close(s.loopDone)
	}
	broadcast(map[string]interface{}{"capture": "idle"})
}

// recordFrames drops a short ambient window first, then accumulates chunks
// until the stop signal. The ambient level is only logged; the endpoint does
// its own silence handling.
func recordFrames(src audioSource, stop <-chan struct{}) [][]int16 {
	var frames [][]int16
	calibrateUntil := time.Now().Add(calibrateWindow)
	var ambientSum, ambientN int64

	for {
		select {
		case <-stop:
			if ambientN > 0 && logger != nil {
				logger.Printf("[VOICE] ambient level %d over %d samples", ambientSum/ambientN, ambientN)
			}
			return frames
		default:
		}

		chunk, err := src.ReadChunk()
		if err != nil {
			if logger != nil {
				logger.Printf("[VOICE] read error, ending capture: %v", err)
			}
			return frames
		}

		if time.Now().Before(calibrateUntil) {
			for _, v := range chunk {
				if v < 0 {
					v = -v
				}
				ambientSum += int64(v)
				ambientN++
			}
			continue
		}
		frames = append(frames, chunk)
	}
}

// encodeWAV assembles the recorded chunks into a single 16-bit mono WAV. The
// encoder needs a seekable writer, so the clip goes through a temp file.
func encodeWAV(frames [][]int16, sampleRate int) ([]byte, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("aimouse_clip_%s.wav", uuid.New().String()[:8]))
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	format := &audio.Format{NumChannels: 1, SampleRate: sampleRate}
	for _, chunk := range frames {
		data := make([]int, len(chunk))
		for i, v := range chunk {
			data[i] = int(v)
		}
		buf := &audio.IntBuffer{Format: format, Data: data, SourceBitDepth: 16}
		if err := enc.Write(buf); err != nil {
			enc.Close()
			f.Close()
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// transcribe uploads the clip and returns the recognized text.
func transcribe(clip []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "clip.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(clip); err != nil {
		return "", err
	}
	if speechLanguage != "" {
		_ = writer.WriteField("language", speechLanguage)
	}
	_ = writer.Close()

	req, err := http.NewRequest("POST", speechEndpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := &http.Client{Timeout: speechRequestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("speech endpoint returned %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	return extractTranscript(respBody), nil
}

// extractTranscript pulls the recognized text out of the endpoint's JSON.
// Whisper-style servers answer {"text": ...}; Google-style ones nest the
// transcript under result alternatives, so unknown shapes are walked for the
// first text/transcript string.
func extractTranscript(body []byte) string {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return ""
	}
	return findTranscript(root)
}

func findTranscript(node interface{}) string {
	switch v := node.(type) {
	case map[string]interface{}:
		for _, key := range []string{"text", "transcript"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
		for _, key := range []string{"result", "results", "alternative", "alternatives"} {
			if child, ok := v[key]; ok {
				if s := findTranscript(child); s != "" {
					return s
				}
			}
		}
	case []interface{}:
		for _, child := range v {
			if s := findTranscript(child); s != "" {
				return s
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
