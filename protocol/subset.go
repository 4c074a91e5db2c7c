package protocol

import (
	_ "embed"
	"encoding/xml"
	"fmt"
	"strconv"
	"sync"
)

//go:generate go run deedles.dev/chlorostart/cmd/wlgen -xml chlorostart.xml -out opcodes.go

//go:embed chlorostart.xml
var subsetXML []byte

// Subset returns the parsed description of the spoken protocol subset.
var Subset = sync.OnceValue(func() *Protocol {
	var proto Protocol
	err := xml.Unmarshal(subsetXML, &proto)
	if err != nil {
		panic(fmt.Errorf("parse embedded protocol: %w", err))
	}
	return &proto
})

func opName(ops []Op, op uint16) string {
	if int(op) < len(ops) {
		return ops[op].Name
	}
	return "op" + strconv.FormatUint(uint64(op), 10)
}

// EventName returns the name of event op of the named interface. Ops
// that aren't described are named by number.
func EventName(iface string, op uint16) string {
	i, ok := Subset().Interface(iface)
	if !ok {
		return opName(nil, op)
	}
	return opName(i.Events, op)
}

// RequestName returns the name of request op of the named interface.
func RequestName(iface string, op uint16) string {
	i, ok := Subset().Interface(iface)
	if !ok {
		return opName(nil, op)
	}
	return opName(i.Requests, op)
}

// Version returns the highest version of the named interface that the
// client understands, or 0 if it doesn't speak the interface at all.
func Version(iface string) uint32 {
	i, ok := Subset().Interface(iface)
	if !ok {
		return 0
	}
	return uint32(i.Version)
}
