// Package netutil enumerates local network interfaces and derives
// their IPv4 broadcast addresses, for choosing the address the
// Art-Net worker polls on startup.
package netutil

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strings"
)

// BroadcastOption is one candidate broadcast address for Art-Net,
// tagged with the kind of interface it came from so callers can
// prefer wired over wireless over everything else.
type BroadcastOption struct {
	InterfaceName string
	Address       string
	Broadcast     string
	InterfaceType string // "ethernet", "wifi", "other"
}

// GetInterfaceType determines the type of network interface.
func GetInterfaceType(ifaceName string) string {
	if runtime.GOOS == "darwin" {
		if t := getMacOSInterfaceType(ifaceName); t != "other" {
			return t
		}
	}
	return getFallbackInterfaceType(ifaceName)
}

// getMacOSInterfaceType uses networksetup to determine interface type on macOS.
func getMacOSInterfaceType(ifaceName string) string {
	for _, char := range ifaceName {
		isLowerLetter := char >= 'a' && char <= 'z'
		isUpperLetter := char >= 'A' && char <= 'Z'
		isDigit := char >= '0' && char <= '9'
		isAllowed := isLowerLetter || isUpperLetter || isDigit || char == '-' || char == '_'
		if !isAllowed {
			return getFallbackInterfaceType(ifaceName)
		}
	}

	cmd := exec.Command("networksetup", "-listallhardwareports")
	output, err := cmd.Output()
	if err != nil {
		return getFallbackInterfaceType(ifaceName)
	}

	outputLower := strings.ToLower(string(output))
	deviceSearch := fmt.Sprintf("device: %s", strings.ToLower(ifaceName))

	blocks := strings.Split(outputLower, "hardware port:")
	for _, block := range blocks[1:] {
		if strings.Contains(block, deviceSearch) {
			if strings.Contains(block, "wi-fi") ||
				strings.Contains(block, "wifi") ||
				strings.Contains(block, "wireless") {
				return "wifi"
			}
			if (strings.Contains(block, "usb") &&
				(strings.Contains(block, "lan") ||
					strings.Contains(block, "ethernet") ||
					strings.Contains(block, "100"))) ||
				strings.Contains(block, "thunderbolt") ||
				strings.Contains(block, "ethernet") ||
				strings.Contains(block, "wired") {
				return "ethernet"
			}
			return "other"
		}
	}

	return getFallbackInterfaceType(ifaceName)
}

// getFallbackInterfaceType uses naming patterns to guess interface type.
func getFallbackInterfaceType(ifaceName string) string {
	name := strings.ToLower(ifaceName)

	if name == "en0" {
		return "wifi"
	}
	if strings.HasPrefix(name, "eth") ||
		strings.HasPrefix(name, "en") ||
		strings.HasPrefix(name, "enp") ||
		strings.HasPrefix(name, "eno") {
		return "ethernet"
	}
	if strings.HasPrefix(name, "wlan") ||
		strings.HasPrefix(name, "wl") ||
		strings.Contains(name, "wifi") ||
		strings.Contains(name, "wireless") {
		return "wifi"
	}
	return "other"
}

// calculateBroadcast computes the broadcast address from an IPv4
// address and netmask.
func calculateBroadcast(ip net.IP, mask net.IPMask) net.IP {
	if ip == nil || mask == nil {
		return nil
	}

	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}

	if len(mask) == 16 {
		mask = mask[12:16]
	}
	if len(mask) != 4 {
		return nil
	}

	broadcast := make(net.IP, 4)
	for i := 0; i < 4; i++ {
		broadcast[i] = ip4[i] | ^mask[i]
	}
	return broadcast
}

// ListBroadcastOptions returns every up, non-loopback IPv4 interface's
// broadcast address, ethernet interfaces first, then wifi, then other.
func ListBroadcastOptions() ([]BroadcastOption, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("netutil: listing interfaces: %w", err)
	}

	var ethernet, wifi, other []BroadcastOption

	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}

			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}

			broadcast := calculateBroadcast(ip4, ipNet.Mask)
			if broadcast == nil || broadcast.String() == ip4.String() {
				continue
			}

			interfaceType := GetInterfaceType(iface.Name)
			option := BroadcastOption{
				InterfaceName: iface.Name,
				Address:       ip4.String(),
				Broadcast:     broadcast.String(),
				InterfaceType: interfaceType,
			}

			switch interfaceType {
			case "ethernet":
				ethernet = append(ethernet, option)
			case "wifi":
				wifi = append(wifi, option)
			default:
				other = append(other, option)
			}
		}
	}

	options := make([]BroadcastOption, 0, len(ethernet)+len(wifi)+len(other))
	options = append(options, ethernet...)
	options = append(options, wifi...)
	options = append(options, other...)
	return options, nil
}

// DefaultBroadcastAddress returns the broadcast address of the
// highest-preference interface (ethernet, then wifi, then other), or
// "" if no usable interface was found. An Art-Net worker given an empty
// broadcast address sends no ArtPoll.
func DefaultBroadcastAddress() string {
	options, err := ListBroadcastOptions()
	if err != nil || len(options) == 0 {
		return ""
	}
	return options[0].Broadcast
}
