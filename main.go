//go:build windows
// +build windows

package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/jchv/go-webview2"
	"github.com/lxn/win"
)

//go:embed ui.html
var content embed.FS

const currentVersion = "1.0.0"

var (
	user32       = syscall.NewLazyDLL("user32.dll")
	shell32      = syscall.NewLazyDLL("shell32.dll")
	shellExecute = shell32.NewProc("ShellExecuteW")

	webviewHwnd win.HWND
	w           webview2.WebView

	serverPort = "8766"

	dataDir     string
	configFile  string
	historyFile string
	logFile     string
	logger      *log.Logger
	fileMu      sync.Mutex

	clients   = make(map[chan string]bool)
	clientsMu sync.RWMutex

	closeOnce sync.Mutex
	closing   bool
)

func safeDefer(where string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Printf("[RECOVER] %s: %v", where, r)
		}
	}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Printf("[FATAL RECOVER] %v\n%s", r, debug.Stack())
			} else {
				log.Printf("[FATAL RECOVER] %v\n%s", r, debug.Stack())
			}
		}
	}()

	appData := os.Getenv("APPDATA")
	if appData == "" {
		appData = "."
	}
	dataDir = filepath.Join(appData, "AiMouseControl")
	os.MkdirAll(dataDir, 0755)
	configFile = filepath.Join(dataDir, "config.json")
	historyFile = filepath.Join(dataDir, "history.json")
	logFile = filepath.Join(dataDir, "debug.log")

	setupLogging()
	loadConfig()
	loadHistory()

	if s := getMouseSpeed(); s > 0 && logger != nil {
		logger.Printf("[STARTUP] current pointer speed: %d", s)
	}

	if startWithWindowsEnabled() {
		enableStartup()
	}

	if p := os.Getenv("PORT"); p != "" {
		serverPort = p
	}

	started := startListeners()
	if started == 0 {
		fmt.Println("No AiMouse detected; GUI-only edit mode.")
		if logger != nil {
			logger.Printf("[STARTUP] no matching devices, GUI-only edit mode")
		}
	} else {
		fmt.Printf("Listening on %d mouse interface(s).\n", started)
		if logger != nil {
			logger.Printf("[STARTUP] %d listener(s) started", started)
		}
	}

	go startWebServer()
	registerQuitHotkey(func() { go requestSaveAndClose() })

	time.Sleep(300 * time.Millisecond)

	os.Setenv("WEBVIEW2_ADDITIONAL_BROWSER_ARGUMENTS", "--disable-gpu --disable-extensions --disable-background-networking --disk-cache-size=1")

	if logger != nil {
		logger.Printf("[STARTUP] creating WebView2 instance")
	}
	w = webview2.NewWithOptions(webview2.WebViewOptions{
		Debug:     false,
		AutoFocus: true,
		WindowOptions: webview2.WindowOptions{
			Title:  "Hii AiMouse Control Center",
			Width:  720,
			Height: 640,
			IconId: 0,
		},
	})
	if w == nil {
		if logger != nil {
			logger.Printf("[STARTUP] WebView2 returned nil")
		}
		return
	}
	defer w.Destroy()

	webviewHwnd = win.HWND(w.Window())

	oldProc := win.SetWindowLongPtr(webviewHwnd, win.GWLP_WNDPROC, syscall.NewCallback(webviewWndProc))
	win.SetWindowLongPtr(webviewHwnd, win.GWLP_USERDATA, oldProc)

	url := fmt.Sprintf("http://127.0.0.1:%s", serverPort)
	if logger != nil {
		logger.Printf("[STARTUP] webview navigating to %s", url)
	}
	w.Navigate(url)
	w.Run()
	if logger != nil {
		logger.Printf("[STARTUP] webview run loop exited")
	}
	saveAndExit()
}

// webviewWndProc intercepts the window close so the implicit save-and-apply
// can run before the process dies. The GUI gets one SSE nudge to flush its
// current edits first; if no quit call arrives, shutdown proceeds anyway.
func webviewWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_CLOSE:
		go requestSaveAndClose()
		return 0
	}
	oldProc := win.GetWindowLongPtr(hwnd, win.GWLP_USERDATA)
	return win.CallWindowProc(oldProc, hwnd, msg, wParam, lParam)
}

func requestSaveAndClose() {
	defer safeDefer("requestSaveAndClose")
	closeOnce.Lock()
	if closing {
		closeOnce.Unlock()
		return
	}
	closing = true
	closeOnce.Unlock()

	broadcast(map[string]interface{}{"closeRequested": true})
	time.Sleep(800 * time.Millisecond)
	saveAndExit()
}

// saveAndExit is the only intended way out of the process. Listener and
// capture goroutines are daemon-style; an abrupt exit after persisting is
// deliberate.
func saveAndExit() {
	if logger != nil {
		logger.Printf("[SHUTDOWN] saving and exiting")
	}
	saveConfig()
	saveHistory()
	applyMouseSpeed(activeProfile().DPINormal)
	os.Exit(0)
}

// openURL hands the link to the shell so it opens in the default browser.
func openURL(url string) error {
	verb, _ := syscall.UTF16PtrFromString("open")
	target, _ := syscall.UTF16PtrFromString(url)
	ret, _, err := shellExecute.Call(0, uintptr(unsafe.Pointer(verb)), uintptr(unsafe.Pointer(target)), 0, 0, uintptr(win.SW_SHOWNORMAL))
	// ShellExecute returns a value > 32 on success.
	if ret <= 32 {
		return fmt.Errorf("ShellExecuteW(%s) = %d: %v", url, ret, err)
	}
	return nil
}

func serveHTML(rw http.ResponseWriter, r *http.Request) {
	data, _ := content.ReadFile("ui.html")
	rw.Header().Set("Content-Type", "text/html")
	rw.Write(data)
}

func startWebServer() {
	http.HandleFunc("/", serveHTML)
	http.HandleFunc("/events", handleSSE)
	http.HandleFunc("/api/status", handleStatus)
	http.HandleFunc("/api/config", handleConfig)
	http.HandleFunc("/api/profile/save", handleProfileSave)
	http.HandleFunc("/api/profile/add", handleProfileAdd)
	http.HandleFunc("/api/profile/delete", handleProfileDelete)
	http.HandleFunc("/api/profile/select", handleProfileSelect)
	http.HandleFunc("/api/history", handleHistory)
	http.HandleFunc("/api/last-report", handleLastReport)
	http.HandleFunc("/api/quit", handleQuit)

	addr := "127.0.0.1:" + serverPort
	if logger != nil {
		logger.Printf("[HTTP] listening on %s", addr)
	}
	if err := http.ListenAndServe(addr, nil); err != nil {
		if logger != nil {
			logger.Printf("[HTTP] server error: %v", err)
		} else {
			log.Printf("[HTTP] server error: %v", err)
		}
	}
}

func statusPayload() map[string]interface{} {
	capture := "idle"
	if captureActive() {
		capture = "recording"
	}
	return map[string]interface{}{
		"listeners":     activeListeners(),
		"capture":       capture,
		"dpiMode":       currentSpeedMode(),
		"activeProfile": activeProfileName(),
		"voiceEnabled":  speechEndpoint != "",
		"version":       currentVersion,
	}
}

func handleSSE(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/event-stream")
	rw.Header().Set("Cache-Control", "no-cache")
	rw.Header().Set("Connection", "keep-alive")

	if f, ok := rw.(http.Flusher); ok {
		fmt.Fprint(rw, ":ok\n\n")
		if j, err := json.Marshal(statusPayload()); err == nil {
			fmt.Fprintf(rw, "data: %s\n\n", j)
		}
		f.Flush()
	}

	messageChan := make(chan string, 8)

	clientsMu.Lock()
	clients[messageChan] = true
	clientsMu.Unlock()

	defer func() {
		clientsMu.Lock()
		delete(clients, messageChan)
		close(messageChan)
		clientsMu.Unlock()
	}()

	flusher, _ := rw.(http.Flusher)
	ctxDone := r.Context().Done()

	for {
		select {
		case <-ctxDone:
			return
		case msg, ok := <-messageChan:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(rw, "data: %s\n\n", msg)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func broadcast(data map[string]interface{}) {
	jsonData, _ := json.Marshal(data)
	payload := string(jsonData)

	clientsMu.RLock()
	for client := range clients {
		func(ch chan string, m string) {
			defer func() {
				if r := recover(); r != nil {
					if logger != nil {
						logger.Printf("[SSE] dropped send to closed channel: %v", r)
					}
				}
			}()
			select {
			case ch <- m:
			default:
			}
		}(client, payload)
	}
	clientsMu.RUnlock()
}

func handleStatus(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(statusPayload())
}

func handleConfig(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(map[string]interface{}{
		"config": configSnapshot(),
		"status": statusPayload(),
	})
}

// profileSavePayload is what the GUI posts on Save: the full row state plus
// whichever DPI values the last DPI-capable row carried.
type profileSavePayload struct {
	Name             string       `json:"name"`
	Mic              ButtonConfig `json:"mic"`
	Search           ButtonConfig `json:"search"`
	Side             ButtonConfig `json:"side"`
	DPIFast          int          `json:"dpi_fast"`
	DPINormal        int          `json:"dpi_normal"`
	StartWithWindows bool         `json:"start_with_windows"`
}

func handleProfileSave(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if r.Method != "POST" {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var p profileSavePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}

	storeProfile(p.Name, Profile{
		Mic:       p.Mic,
		Search:    p.Search,
		Side:      p.Side,
		DPIFast:   p.DPIFast,
		DPINormal: p.DPINormal,
	})
	prevStartup := startWithWindowsEnabled()
	setStartWithWindows(p.StartWithWindows)

	ok := saveConfig()
	if ok {
		applyMouseSpeed(activeProfile().DPINormal)
		recordActionEvent("save", activeProfileName())
		if prevStartup != p.StartWithWindows {
			go applyStartupSetting()
		}
		broadcast(map[string]interface{}{"profilesChanged": true, "activeProfile": activeProfileName()})
	}
	json.NewEncoder(rw).Encode(map[string]bool{"success": ok})
}

type profileNamePayload struct {
	Name string `json:"name"`
}

func writeProfileResult(rw http.ResponseWriter, err error) {
	if err != nil {
		json.NewEncoder(rw).Encode(map[string]interface{}{"success": false, "error": err.Error()})
		return
	}
	saveConfig()
	broadcast(map[string]interface{}{"profilesChanged": true, "activeProfile": activeProfileName()})
	json.NewEncoder(rw).Encode(map[string]interface{}{"success": true, "active": activeProfileName()})
}

func handleProfileAdd(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if r.Method != "POST" {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var p profileNamePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	err := addProfile(p.Name)
	if err == nil {
		recordActionEvent("profile_add", p.Name)
	}
	writeProfileResult(rw, err)
}

func handleProfileDelete(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if r.Method != "POST" {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var p profileNamePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	err := deleteProfile(p.Name)
	if err == nil {
		recordActionEvent("profile_delete", p.Name)
	}
	writeProfileResult(rw, err)
}

func handleProfileSelect(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if r.Method != "POST" {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var p profileNamePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	err := selectProfile(p.Name)
	if err == nil {
		recordActionEvent("profile_select", p.Name)
	}
	writeProfileResult(rw, err)
}

func handleHistory(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(historySnapshot())
}

func handleLastReport(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(lastReportSummary())
}

func handleQuit(rw http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(rw, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(map[string]bool{"success": true})
	go func() {
		time.Sleep(100 * time.Millisecond)
		saveAndExit()
	}()
}
