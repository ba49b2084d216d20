// Package wire implements the message types and JSON codec of the
// protocol spoken between the host and a plugin process. It is pure: no
// I/O, no global state, no knowledge of how the transport delivers bytes;
// length framing belongs to package sandbox.
package wire

// PathID, PackageID, TargetID, ProductID, ProjectID and ProjectTargetID are
// dense integer handles into the id-keyed tables of a WireInput. They are
// stable only within the WireInput that produced them.
type (
	PathID          int
	PackageID       int
	TargetID        int
	ProductID       int
	ProjectID       int
	ProjectTargetID int
)
