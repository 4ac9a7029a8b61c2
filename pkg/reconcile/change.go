package reconcile

// Op is the kind of content change applied to a live node.
type Op uint8

const (
	OpSetText  Op = 0x01 // Text or comment data replaced
	OpSetAttr  Op = 0x02 // Positional attribute replaced
	OpSetStyle Op = 0x03 // Inline style property replaced
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpSetText:
		return "SetText"
	case OpSetAttr:
		return "SetAttr"
	case OpSetStyle:
		return "SetStyle"
	default:
		return "Unknown"
	}
}

// Change records one write made to the live tree.
type Change struct {
	Op    Op     // Operation type
	Path  string // Tree path of the live node
	Key   string // Attribute key or style property (empty for text)
	Value string // New value
}
