// Package inventory loads the YAML device inventory: the switches nexcon
// manages, how to reach them, and the credential and transport defaults
// shared across entries.
package inventory

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nexcon-network/nexcon/pkg/device"
	"github.com/nexcon-network/nexcon/pkg/nxapi"
	"github.com/nexcon-network/nexcon/pkg/sshcli"
	"github.com/nexcon-network/nexcon/pkg/util"
)

// Transports a device entry may select.
const (
	TransportNXAPI = "nxapi"
	TransportSSH   = "ssh"
)

// Device is one resolved inventory entry: file values merged with the
// inventory defaults. Passwords never serialize.
type Device struct {
	Name      string   `json:"name"`
	Host      string   `json:"host"`
	Transport string   `json:"transport"`
	Username  string   `json:"username"`
	Password  string   `json:"-"`
	Scheme    string   `json:"scheme,omitempty"`
	Port      int      `json:"port,omitempty"`
	Insecure  bool     `json:"insecure,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Inventory is the loaded device inventory.
type Inventory struct {
	devices map[string]*Device
	order   []string
}

// Wire formats. Pointer fields distinguish "not set" from a zero value so
// defaults only fill real gaps.
type inventoryFile struct {
	Defaults defaultsEntry `yaml:"defaults"`
	Devices  []deviceEntry `yaml:"devices"`
}

type defaultsEntry struct {
	Transport string `yaml:"transport"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Scheme    string `yaml:"scheme"`
	Port      int    `yaml:"port"`
	Insecure  bool   `yaml:"insecure"`
}

type deviceEntry struct {
	Name      string   `yaml:"name"`
	Host      string   `yaml:"host"`
	Transport string   `yaml:"transport"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Scheme    string   `yaml:"scheme"`
	Port      *int     `yaml:"port"`
	Insecure  *bool    `yaml:"insecure"`
	Tags      []string `yaml:"tags"`
}

// Load reads and validates an inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}

	var file inventoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing inventory %s: %w", path, err)
	}
	if len(file.Devices) == 0 {
		return nil, fmt.Errorf("inventory %s: no devices defined", path)
	}

	inv := &Inventory{devices: make(map[string]*Device, len(file.Devices))}
	b := &util.ValidationBuilder{}
	for i, entry := range file.Devices {
		dev, errs := resolve(entry, file.Defaults)
		for _, msg := range errs {
			b.AddErrorf("device %d (%s): %s", i+1, entry.Name, msg)
		}
		if dev == nil {
			continue
		}
		if _, dup := inv.devices[dev.Name]; dup {
			b.AddErrorf("device %d (%s): duplicate name", i+1, dev.Name)
			continue
		}
		inv.devices[dev.Name] = dev
		inv.order = append(inv.order, dev.Name)
	}
	if err := b.Build(); err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	return inv, nil
}

// resolve merges one entry with the defaults and checks it. It returns the
// messages rather than an error so the caller can prefix them per entry.
func resolve(entry deviceEntry, defaults defaultsEntry) (*Device, []string) {
	var errs []string
	if entry.Name == "" {
		return nil, []string{"name is required"}
	}

	dev := &Device{
		Name:      entry.Name,
		Host:      util.CoalesceString(entry.Host, entry.Name),
		Transport: util.CoalesceString(entry.Transport, defaults.Transport, TransportNXAPI),
		Username:  util.CoalesceString(entry.Username, defaults.Username),
		Password:  util.CoalesceString(entry.Password, defaults.Password),
		Scheme:    util.CoalesceString(entry.Scheme, defaults.Scheme),
		Tags:      entry.Tags,
	}
	if entry.Port != nil {
		dev.Port = *entry.Port
	} else {
		dev.Port = defaults.Port
	}
	if entry.Insecure != nil {
		dev.Insecure = *entry.Insecure
	} else {
		dev.Insecure = defaults.Insecure
	}

	switch dev.Transport {
	case TransportNXAPI, TransportSSH:
	default:
		errs = append(errs, fmt.Sprintf("transport must be %s or %s, got %q",
			TransportNXAPI, TransportSSH, dev.Transport))
	}
	if dev.Username == "" {
		errs = append(errs, "username is required (entry or defaults)")
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return dev, nil
}

// Device returns the named entry.
func (inv *Inventory) Device(name string) (*Device, error) {
	dev, ok := inv.devices[name]
	if !ok {
		return nil, fmt.Errorf("device %s not in inventory: %w", name, util.ErrNotFound)
	}
	return dev, nil
}

// Names returns all device names, sorted.
func (inv *Inventory) Names() []string {
	names := make([]string, len(inv.order))
	copy(names, inv.order)
	sort.Strings(names)
	return names
}

// Devices returns the entries in file order.
func (inv *Inventory) Devices() []*Device {
	out := make([]*Device, 0, len(inv.order))
	for _, name := range inv.order {
		out = append(out, inv.devices[name])
	}
	return out
}

// WithTag returns the entries carrying the tag, in file order.
func (inv *Inventory) WithTag(tag string) []*Device {
	var out []*Device
	for _, dev := range inv.Devices() {
		for _, t := range dev.Tags {
			if t == tag {
				out = append(out, dev)
				break
			}
		}
	}
	return out
}

// Open establishes the entry's transport and wraps it in a device client.
// The caller owns the client and must Close it.
func (d *Device) Open() (*device.Device, error) {
	conn, err := d.dial()
	if err != nil {
		return nil, err
	}
	return device.New(d.Name, conn), nil
}

func (d *Device) dial() (device.Conn, error) {
	switch d.Transport {
	case TransportSSH:
		opts := []func(*sshcli.Conn){
			sshcli.Username(d.Username),
			sshcli.Password(d.Password),
		}
		if d.Port != 0 {
			opts = append(opts, sshcli.Port(d.Port))
		}
		return sshcli.Dial(d.Host, opts...)
	default:
		opts := []func(*nxapi.Client){
			nxapi.Username(d.Username),
			nxapi.Password(d.Password),
			nxapi.Insecure(d.Insecure),
		}
		if d.Scheme != "" {
			opts = append(opts, nxapi.Scheme(d.Scheme))
		}
		if d.Port != 0 {
			opts = append(opts, nxapi.Port(d.Port))
		}
		return nxapi.NewClient(d.Host, opts...)
	}
}
