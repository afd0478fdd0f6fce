package tree

import "github.com/mesh-intelligence/assetfix/pkg/types"

// Position says where a node goes relative to its reference node.
type Position int

// LastChild appends the node after the existing children of the reference.
// It is the only position the asset rebuild needs.
const LastChild Position = 1

// Node is an asset together with its pending location. A location set with
// SetLocation is applied by the next Table.Store call and then cleared.
type Node struct {
	types.Asset

	reference int64
	position  Position
}

// NewNode returns an unsaved, unlocated node.
func NewNode(name, title, rules string) *Node {
	return &Node{Asset: types.Asset{Name: name, Title: title, Rules: rules}}
}

// SetLocation places the node relative to the asset referenceID on the next
// store.
func (n *Node) SetLocation(referenceID int64, pos Position) {
	n.reference = referenceID
	n.position = pos
}

// ClearLocation drops a pending location. The next store keeps the node
// where it is, or inserts it detached when it is new.
func (n *Node) ClearLocation() {
	n.reference = 0
	n.position = 0
}

// Location returns the pending reference asset id and whether one is set.
func (n *Node) Location() (int64, bool) {
	return n.reference, n.position != 0
}

// IsNew reports whether the node has not been stored yet.
func (n *Node) IsNew() bool {
	return n.ID == 0
}
