package testutil

import "github.com/nexcon-network/nexcon/pkg/device"

// Canned NX-OS command output for one small lab switch. The JSON bodies
// follow the device's TABLE/ROW convention: single-row tables carry the
// row as an object, multi-row tables as an array.
const (
	// ShowSNMPCommunity lists two communities, one with an ACL filter and
	// one without ("-" marks no filter).
	ShowSNMPCommunity = `{
		"TABLE_snmp_community": {
			"ROW_snmp_community": [
				{
					"community_name": "netops",
					"grouporaccess": "network-operator",
					"aclfilter": "snmp-hosts"
				},
				{
					"community_name": "secret",
					"grouporaccess": "network-admin",
					"aclfilter": "-"
				}
			]
		}
	}`

	// ShowPIMInterfaceEth1 is a sparse-mode interface with a raised DR
	// priority and otherwise default timers.
	ShowPIMInterfaceEth1 = `{
		"TABLE_iod": {
			"ROW_iod": {
				"if-name": "Ethernet1/1",
				"if-addr": "10.1.1.1",
				"sparse": "enabled",
				"dr-address": "10.1.1.1",
				"dr-priority": "10",
				"hello-interval": "30000",
				"is-border": "false",
				"is-auth-configured": "false",
				"nbr-policy-name": "none configured",
				"jp-in-policy-name": "none configured",
				"jp-out-policy-name": "none configured"
			}
		}
	}`

	// ShowPIMInterfaceNone is the body for an interface without PIM.
	ShowPIMInterfaceNone = `{}`

	// RunIntfEth1 is the interface's running config matching
	// ShowPIMInterfaceEth1.
	RunIntfEth1 = `!Command: show running-config interface Ethernet1/1

interface Ethernet1/1
  no switchport
  ip address 10.1.1.1/30
  ip pim sparse-mode
  ip pim dr-priority 10
`

	// RunPIM is the device-global PIM running config: an explicit SSM
	// range and one bare rendezvous point entry.
	RunPIM = `!Command: show running-config pim

feature pim

ip pim rp-address 10.255.0.1
ip pim ssm range 232.0.0.0/8
`

	// RunSNMP carries a configured contact.
	RunSNMP = `!Command: show running-config snmp

snmp-server contact NOC team x1234
snmp-server location rack 7
snmp-server community netops group network-operator
`

	// ShowVersion is a trimmed show version body.
	ShowVersion = `{
		"header_str": "Cisco Nexus Operating System (NX-OS) Software",
		"bios_ver_str": "05.47",
		"nxos_ver_str": "10.2(5)",
		"chassis_id": "Nexus9000 C9336C-FX2 Chassis",
		"host_name": "nxos-sw01",
		"proc_board_id": "FDO24380ABC",
		"kern_uptm_days": 12,
		"kern_uptm_hrs": 4,
		"kern_uptm_mins": 31,
		"kern_uptm_secs": 9,
		"rr_reason": "Reset Requested by CLI command reload"
	}`
)

// ConfiguredSwitch returns a FakeClient preloaded with the fixtures above:
// pim enabled, Ethernet1/1 routed and running sparse-mode, community
// "netops" present, one RP and an explicit SSM range configured.
func ConfiguredSwitch(name string) *FakeClient {
	f := NewFakeClient(name)
	f.Features["pim"] = true
	f.Layers["Ethernet1/1"] = device.Layer3
	f.JSON["show snmp community"] = ShowSNMPCommunity
	f.JSON["show ip pim interface Ethernet1/1"] = ShowPIMInterfaceEth1
	f.JSON["show version"] = ShowVersion
	f.Text["show running-config interface Ethernet1/1"] = RunIntfEth1
	f.Text["show running-config pim"] = RunPIM
	f.Text["show running-config snmp"] = RunSNMP
	return f
}
