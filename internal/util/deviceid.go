package util

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// deviceNamespace scopes the name-based UUIDs derived from machine ids.
var deviceNamespace = uuid.MustParse("6f0c3f5e-1d2b-4c8a-9a57-5e2f1c7b9d40")

// NewDeviceID returns a stable UUID for this machine, derived from its
// hardware or OS identifier, or a random one when none can be read.
func NewDeviceID() string {
	fingerprint, err := machineFingerprint()
	if err != nil || fingerprint == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(deviceNamespace, []byte(fingerprint)).String()
}

func machineFingerprint() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return macOSUUID()
	case "linux":
		return linuxMachineID()
	case "windows":
		return windowsUUID()
	default:
		return "", errors.New("unsupported platform: " + runtime.GOOS)
	}
}

func macOSUUID() (string, error) {
	out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "IOPlatformUUID") {
			parts := strings.Split(line, "\"")
			if len(parts) >= 4 {
				return parts[3], nil
			}
		}
	}
	return "", errors.New("no IOPlatformUUID found")
}

func linuxMachineID() (string, error) {
	for _, p := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id", "/sys/class/dmi/id/product_uuid"} {
		data, err := os.ReadFile(p)
		if err == nil {
			if id := strings.TrimSpace(string(data)); id != "" {
				return id, nil
			}
		}
	}
	return "", errors.New("no machine id found")
}

func windowsUUID() (string, error) {
	out, err := exec.Command("wmic", "csproduct", "get", "UUID").Output()
	if err != nil {
		return "", err
	}
	lines := strings.Fields(string(out))
	if len(lines) < 2 {
		return "", errors.New("no UUID in wmic output")
	}
	return lines[1], nil
}
