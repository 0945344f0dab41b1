package util

import (
	"net"
	"strings"
)

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// IsValidIPv4CIDR checks if a string is a valid IPv4 CIDR notation
func IsValidIPv4CIDR(cidr string) bool {
	_, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	// Ensure it's IPv4
	parts := strings.Split(cidr, "/")
	ip := net.ParseIP(parts[0])
	return ip != nil && ip.To4() != nil
}

// IsMulticastIPv4CIDR checks if a string is a valid IPv4 CIDR whose
// network address falls in the multicast range (224.0.0.0/4).
func IsMulticastIPv4CIDR(cidr string) bool {
	if !IsValidIPv4CIDR(cidr) {
		return false
	}
	ip, _, _ := net.ParseCIDR(cidr)
	return ip.IsMulticast()
}
