// Package sandbox spawns a compiled plugin executable under a declared
// policy and exposes the framed, bidirectional message stream the
// invocation session pumps. Framing is owned here, not by the wire codec
// (spec §4.A, §4.D): the codec only knows how to interpret bytes once a
// frame has been delimited.
package sandbox

// NetworkKind enumerates the network destinations a plugin may be granted.
type NetworkKind string

const (
	NetworkNone             NetworkKind = "none"
	NetworkLocalUnixSockets NetworkKind = "local-unix-sockets"
	NetworkLocalTCP         NetworkKind = "local-tcp-localhost"
	NetworkDockerDaemon     NetworkKind = "docker-daemon-socket"
	NetworkHostPattern      NetworkKind = "host-pattern"
)

// NetworkPolicy is the tagged variant of permitted network destinations
// from spec §3. HostPattern is only meaningful when Kind is
// NetworkHostPattern.
type NetworkPolicy struct {
	Kind        NetworkKind
	HostPattern string
}

// Policy is the sandbox policy for one invocation: three lists of absolute
// paths plus a network allow-list. It is immutable for the duration of one
// invocation (spec §3).
type Policy struct {
	Writable   []string
	ReadOnly   []string
	ToolSearch []string
	Network    NetworkPolicy
}
