package attach

import (
	"net"
	"sync"
)

// Iface is the part of a network interface the Interface driver inspects.
type Iface struct {
	Name     string
	Up       bool
	Loopback bool
	// Unicast reports whether the interface holds a global or link-local
	// unicast address.
	Unicast bool
}

// InterfaceSource lists the host interfaces.
type InterfaceSource func() ([]Iface, error)

// Interface attaches through a host network interface. The host's own
// network manager does the actual attaching; Begin only starts observing.
//
// With Name set it waits for that interface; otherwise any non-loopback
// interface that is up with a unicast address will do.
type Interface struct {
	Name   string
	source InterfaceSource

	mu      sync.Mutex
	started bool
}

// InterfaceOption configures an Interface driver.
type InterfaceOption func(*Interface)

// WithInterfaceSource replaces the host interface listing.
func WithInterfaceSource(src InterfaceSource) InterfaceOption {
	return func(i *Interface) {
		i.source = src
	}
}

// NewInterface creates a driver watching name, or any interface when name is
// empty.
func NewInterface(name string, opts ...InterfaceOption) *Interface {
	i := &Interface{Name: name, source: HostInterfaces}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Interface) Begin() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.started = true
}

// Status reports StatusFailed when the interfaces cannot be listed or the
// named interface does not exist.
func (i *Interface) Status() Status {
	i.mu.Lock()
	started := i.started
	i.mu.Unlock()
	if !started {
		return StatusIdle
	}

	ifaces, err := i.source()
	if err != nil {
		return StatusFailed
	}
	found := false
	for _, ifc := range ifaces {
		if i.Name != "" {
			if ifc.Name != i.Name {
				continue
			}
			found = true
		} else if ifc.Loopback {
			continue
		}
		if ifc.Up && ifc.Unicast {
			return StatusAttached
		}
	}
	if i.Name != "" && !found {
		return StatusFailed
	}
	return StatusAttaching
}

func (i *Interface) Describe() string {
	if i.Name == "" {
		return "any interface"
	}
	return i.Name
}

// HostInterfaces lists the interfaces of this host.
func HostInterfaces() ([]Iface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Iface, 0, len(ifaces))
	for _, ifc := range ifaces {
		out = append(out, Iface{
			Name:     ifc.Name,
			Up:       ifc.Flags&net.FlagUp != 0,
			Loopback: ifc.Flags&net.FlagLoopback != 0,
			Unicast:  hasUnicast(ifc),
		})
	}
	return out, nil
}

func hasUnicast(ifc net.Interface) bool {
	addrs, err := ifc.Addrs()
	if err != nil {
		return false
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ipnet.IP.IsGlobalUnicast() || ipnet.IP.IsLinkLocalUnicast() || ipnet.IP.IsLoopback() {
			return true
		}
	}
	return false
}
