package util

import "strings"

// CoalesceString returns the first non-empty value.
func CoalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// SplitCommaSeparated splits a comma-separated string and trims whitespace from each element.
// Empty input returns nil.
func SplitCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// interfacePrefixes maps abbreviated interface prefixes to the full names
// NX-OS reports in show output. Longer prefixes are listed before their
// shorter forms so that "eth" wins over "e".
var interfacePrefixes = []struct {
	abbrev string
	full   string
}{
	{"ethernet", "Ethernet"},
	{"eth", "Ethernet"},
	{"e", "Ethernet"},
	{"port-channel", "port-channel"},
	{"po", "port-channel"},
	{"loopback", "loopback"},
	{"lo", "loopback"},
	{"vlan", "Vlan"},
	{"vl", "Vlan"},
	{"mgmt", "mgmt"},
	{"nve", "nve"},
	{"tunnel", "Tunnel"},
	{"tun", "Tunnel"},
}

// NormalizeInterfaceName expands an abbreviated interface name to the
// canonical form the device uses ("e1/1" -> "Ethernet1/1", "po10" ->
// "port-channel10"). Names that do not match a known prefix are returned
// unchanged.
func NormalizeInterfaceName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	i := 0
	for i < len(name) {
		c := name[i]
		if (c >= '0' && c <= '9') || c == '/' || c == '.' {
			break
		}
		i++
	}
	prefix := strings.ToLower(strings.TrimSpace(name[:i]))
	suffix := name[i:]
	for _, p := range interfacePrefixes {
		if prefix == p.abbrev {
			return p.full + suffix
		}
	}
	return name
}

// InterfaceType returns the device's type word for a normalized interface
// name ("Ethernet1/1" -> "ethernet"). Unknown names return "unknown".
func InterfaceType(name string) string {
	name = strings.ToLower(NormalizeInterfaceName(name))
	switch {
	case strings.HasPrefix(name, "ethernet"):
		return "ethernet"
	case strings.HasPrefix(name, "port-channel"):
		return "portchannel"
	case strings.HasPrefix(name, "loopback"):
		return "loopback"
	case strings.HasPrefix(name, "vlan"):
		return "svi"
	case strings.HasPrefix(name, "mgmt"):
		return "management"
	case strings.HasPrefix(name, "nve"):
		return "nve"
	default:
		return "unknown"
	}
}
