package model

// UntaggedKey is the sentinel tag bucket for records with no lookup match.
const UntaggedKey = "Untagged"

// UnknownProtocol is the sentinel protocol name for numeric codes outside
// the known set.
const UnknownProtocol = "unknown"

// protocolNames maps the numeric protocol identifiers found in flow logs to
// protocol names. Fixed at build time, never extended at runtime.
var protocolNames = map[string]string{
	"6":  "tcp",
	"17": "udp",
	"1":  "icmp",
}

// ProtocolName resolves a numeric protocol code to its lowercase name,
// falling back to UnknownProtocol for unrecognized codes.
func ProtocolName(code string) string {
	if name, ok := protocolNames[code]; ok {
		return name
	}
	return UnknownProtocol
}
