// Package protocol describes the subset of the Wayland protocol that
// the client speaks. The description is kept in the same XML format as
// upstream protocol files and is embedded into the binary, where it is
// used to name messages in debug output and to cap bound versions.
package protocol

import (
	"fmt"
	"strconv"
)

type Protocol struct {
	Name       string      `xml:"name,attr"`
	Interfaces []Interface `xml:"interface"`
}

// Interface returns the interface with the given name.
func (p *Protocol) Interface(name string) (*Interface, bool) {
	for i := range p.Interfaces {
		if p.Interfaces[i].Name == name {
			return &p.Interfaces[i], true
		}
	}
	return nil, false
}

type Interface struct {
	Name    string `xml:"name,attr"`
	Version int    `xml:"version,attr"`

	Requests []Op   `xml:"request"`
	Events   []Op   `xml:"event"`
	Enums    []Enum `xml:"enum"`
}

// Enum returns the enum with the given name.
func (iface *Interface) Enum(name string) (*Enum, bool) {
	for i := range iface.Enums {
		if iface.Enums[i].Name == name {
			return &iface.Enums[i], true
		}
	}
	return nil, false
}

type Op struct {
	Name  string `xml:"name,attr"`
	Since int    `xml:"since,attr"`
	Args  []Arg  `xml:"arg"`
}

type Arg struct {
	Name      string `xml:"name,attr"`
	Type      string `xml:"type,attr"`
	Interface string `xml:"interface,attr"`
	Enum      string `xml:"enum,attr"`
	AllowNull bool   `xml:"allow-null,attr"`
}

type Enum struct {
	Name     string  `xml:"name,attr"`
	Bitfield bool    `xml:"bitfield,attr"`
	Entries  []Entry `xml:"entry"`
}

// Value returns the numeric value of the named entry.
func (e *Enum) Value(name string) (uint32, error) {
	for _, entry := range e.Entries {
		if entry.Name == name {
			v, err := entry.Int()
			return uint32(v), err
		}
	}
	return 0, fmt.Errorf("enum %v has no entry %q", e.Name, name)
}

type Entry struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

func (e Entry) Int() (int, error) {
	v, err := strconv.ParseInt(e.Value, 0, 0)
	return int(v), err
}
