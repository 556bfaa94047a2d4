// Lists every HID interface on the system and flags AiMouse matches.
package main

import (
	"fmt"

	"github.com/sstallion/go-hid"
)

const (
	aimouseVendorID  uint16 = 0x95F1
	aimouseProductID uint16 = 0xA1B6
)

func main() {
	hid.Enumerate(0, 0, func(info *hid.DeviceInfo) error {
		mark := "  "
		if info.VendorID == aimouseVendorID && info.ProductID == aimouseProductID {
			mark = "* "
		}
		fmt.Printf("%sVID: 0x%04x PID: 0x%04x If#: %d UsagePage: 0x%04x Usage: 0x%04x %q %s\n",
			mark, info.VendorID, info.ProductID, info.InterfaceNbr, info.UsagePage, info.Usage,
			info.ProductStr, info.Path)
		return nil
	})
}
