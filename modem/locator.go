package modem

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// HuaweiVendorID is the USB vendor id of Huawei Technologies.
const HuaweiVendorID = "12d1"

type productInfo struct {
	Name        string
	DriverClass Model
}

var supportedProducts = map[string]productInfo{
	"14dc": {Name: "Huawei E303", DriverClass: ModelHuaweiE303},
}

// Locator finds Huawei modems by reading sysfs.
type Locator struct {
	// USBRoot holds one directory per USB device (default /sys/bus/usb/devices)
	USBRoot string

	// NetRoot holds one directory per network interface (default /sys/class/net)
	NetRoot string
}

// NewLocator returns a Locator reading the live sysfs tree.
func NewLocator() *Locator {
	return &Locator{
		USBRoot: "/sys/bus/usb/devices",
		NetRoot: "/sys/class/net",
	}
}

// Discover lists attached Huawei USB devices. Devices with unreadable id
// files are skipped.
func (l *Locator) Discover() []DiscoveredDevice {
	var devices []DiscoveredDevice

	vendorFiles, err := filepath.Glob(filepath.Join(l.USBRoot, "*", "idVendor"))
	if err != nil {
		return devices
	}

	for _, vendorFile := range vendorFiles {
		vendorID, ok := readID(vendorFile)
		if !ok || vendorID != HuaweiVendorID {
			continue
		}

		sysfsPath := filepath.Dir(vendorFile)
		productID, ok := readID(filepath.Join(sysfsPath, "idProduct"))
		if !ok {
			continue
		}

		device := DiscoveredDevice{
			Path:      sysfsPath,
			ProductID: productID,
			Interface: l.findInterface(sysfsPath),
		}
		if info, ok := supportedProducts[productID]; ok {
			device.Supported = true
			device.Name = info.Name
			device.DriverClass = info.DriverClass
		}
		devices = append(devices, device)
	}

	return devices
}

// Load creates a client for every supported modem found by Discover.
func (l *Locator) Load(cfg ClientConfig) []Modem {
	var modems []Modem
	for _, device := range l.Discover() {
		if !device.Supported {
			continue
		}
		switch device.DriverClass {
		case ModelHuaweiE303:
			client, err := NewE303Client(cfg, newHTTPClient(cfg), device.Interface, device.Path)
			if err != nil {
				slog.Warn("failed to create modem client", "path", device.Path, "error", err)
				continue
			}
			modems = append(modems, client)
		default:
			slog.Warn("no driver for modem", "path", device.Path, "class", device.DriverClass)
		}
	}
	return modems
}

// findInterface returns the network interface whose device symlink resolves
// to sysfsPath or one of its children.
func (l *Locator) findInterface(sysfsPath string) string {
	device, err := filepath.EvalSymlinks(sysfsPath)
	if err != nil {
		return ""
	}

	interfaces, err := os.ReadDir(l.NetRoot)
	if err != nil {
		return ""
	}
	for _, entry := range interfaces {
		target, err := filepath.EvalSymlinks(filepath.Join(l.NetRoot, entry.Name(), "device"))
		if err != nil {
			continue
		}
		if target == device || strings.HasPrefix(target, device+string(filepath.Separator)) {
			return entry.Name()
		}
	}
	return ""
}

func readID(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}
