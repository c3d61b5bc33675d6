package netutil

import (
	"net"
	"testing"
)

func TestCalculateBroadcast(t *testing.T) {
	tests := []struct {
		name     string
		ip       net.IP
		mask     net.IPMask
		expected string
	}{
		{"Class C network", net.ParseIP("192.168.1.100"), net.IPv4Mask(255, 255, 255, 0), "192.168.1.255"},
		{"Class B network", net.ParseIP("172.16.5.10"), net.IPv4Mask(255, 255, 0, 0), "172.16.255.255"},
		{"Class A network", net.ParseIP("10.0.0.5"), net.IPv4Mask(255, 0, 0, 0), "10.255.255.255"},
		{"/28 subnet", net.ParseIP("192.168.1.20"), net.IPv4Mask(255, 255, 255, 240), "192.168.1.31"},
		{"/30 subnet", net.ParseIP("192.168.1.5"), net.IPv4Mask(255, 255, 255, 252), "192.168.1.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calculateBroadcast(tt.ip, tt.mask)
			if result == nil {
				t.Fatalf("calculateBroadcast returned nil")
			}
			if result.String() != tt.expected {
				t.Errorf("calculateBroadcast(%s, %v) = %s, want %s", tt.ip, tt.mask, result.String(), tt.expected)
			}
		})
	}
}

func TestCalculateBroadcastNilInputs(t *testing.T) {
	if r := calculateBroadcast(nil, net.IPv4Mask(255, 255, 255, 0)); r != nil {
		t.Error("calculateBroadcast(nil, mask) should return nil")
	}
	if r := calculateBroadcast(net.ParseIP("192.168.1.1"), nil); r != nil {
		t.Error("calculateBroadcast(ip, nil) should return nil")
	}
	if r := calculateBroadcast(net.ParseIP("::1"), net.IPv4Mask(255, 255, 255, 0)); r != nil {
		t.Error("calculateBroadcast(ipv6, mask) should return nil")
	}
}

func TestGetFallbackInterfaceType(t *testing.T) {
	tests := []struct {
		name     string
		iface    string
		expected string
	}{
		{"en0 is wifi", "en0", "wifi"},
		{"en1 is ethernet", "en1", "ethernet"},
		{"eth0 is ethernet", "eth0", "ethernet"},
		{"wlan0 is wifi", "wlan0", "wifi"},
		{"wlp2s0 is wifi", "wlp2s0", "wifi"},
		{"enp0s3 is ethernet", "enp0s3", "ethernet"},
		{"eno1 is ethernet", "eno1", "ethernet"},
		{"utun0 is other", "utun0", "other"},
		{"bridge0 is other", "bridge0", "other"},
		{"lo0 is other", "lo0", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := getFallbackInterfaceType(tt.iface); result != tt.expected {
				t.Errorf("getFallbackInterfaceType(%q) = %q, want %q", tt.iface, result, tt.expected)
			}
		})
	}
}

func TestGetInterfaceType(t *testing.T) {
	testNames := []string{"en0", "en1", "eth0", "wlan0", "lo0", "utun0", "bridge0", "enp0s3", "eno1"}
	validTypes := map[string]bool{"ethernet": true, "wifi": true, "other": true}

	for _, name := range testNames {
		t.Run(name, func(t *testing.T) {
			if result := GetInterfaceType(name); !validTypes[result] {
				t.Errorf("GetInterfaceType(%q) = %q, not a valid type", name, result)
			}
		})
	}
}

func TestGetInterfaceTypeSanitizesInput(t *testing.T) {
	specialNames := []string{"en0; rm -rf /", "eth0 && echo hacked", "wlan$(whoami)", "`id`"}

	for _, name := range specialNames {
		t.Run(name, func(t *testing.T) {
			if result := GetInterfaceType(name); result == "" {
				t.Errorf("GetInterfaceType(%q) returned empty string", name)
			}
		})
	}
}

func TestListBroadcastOptionsFieldsAreValid(t *testing.T) {
	options, err := ListBroadcastOptions()
	if err != nil {
		t.Fatalf("ListBroadcastOptions() returned error: %v", err)
	}

	validTypes := map[string]bool{"ethernet": true, "wifi": true, "other": true}
	for _, opt := range options {
		if opt.InterfaceName == "" || opt.Address == "" || opt.Broadcast == "" {
			t.Errorf("broadcast option has an empty field: %+v", opt)
		}
		if !validTypes[opt.InterfaceType] {
			t.Errorf("interface type %q is not valid", opt.InterfaceType)
		}
	}
}

func TestDefaultBroadcastAddressNeverPanics(t *testing.T) {
	_ = DefaultBroadcastAddress()
}
