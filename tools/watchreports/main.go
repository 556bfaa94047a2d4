// Opens every AiMouse interface and hex-dumps incoming input reports with
// the byte-5 event code decoded. Useful when mapping new button codes.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/sstallion/go-hid"
)

const (
	aimouseVendorID  uint16 = 0x95F1
	aimouseProductID uint16 = 0xA1B6

	codeIndex = 5
)

var codeNames = map[byte]string{
	33: "mic down", 34: "mic up",
	35: "search down", 36: "search up",
	37: "side down", 38: "side up",
}

func main() {
	var paths []string
	hid.Enumerate(aimouseVendorID, aimouseProductID, func(info *hid.DeviceInfo) error {
		paths = append(paths, info.Path)
		return nil
	})
	if len(paths) == 0 {
		log.Fatal("no AiMouse interfaces found")
	}
	fmt.Printf("Watching %d interface(s), ctrl+c to stop.\n", len(paths))

	for _, p := range paths {
		go watch(p)
	}
	select {}
}

func watch(path string) {
	dev, err := hid.OpenPath(path)
	if err != nil {
		log.Printf("open %s: %v", path, err)
		return
	}
	defer dev.Close()
	if err := dev.SetNonblock(true); err != nil {
		log.Printf("nonblock %s: %v", path, err)
		return
	}

	buf := make([]byte, 64)
	for {
		n, err := dev.Read(buf)
		if err != nil {
			log.Printf("read %s: %v", path, err)
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		name := ""
		if n > codeIndex {
			if s, ok := codeNames[buf[codeIndex]]; ok {
				name = "  <- " + s
			}
		}
		fmt.Printf("%s  % -3d %s%s\n", time.Now().Format("15:04:05.000"), n, hex.EncodeToString(buf[:n]), name)
	}
}
