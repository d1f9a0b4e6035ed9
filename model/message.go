package model

// Node is one part of a parsed email: a content-type label plus either raw
// text or an ordered list of child parts.
type Node struct {
	ContentType string
	Payload     Payload
}

// Payload is implemented by Leaf, Multipart and Unsupported.
type Payload interface {
	payload()
}

// Leaf holds the transfer-decoded body of a single-part node. The bytes have
// not been charset-decoded.
type Leaf struct {
	Data []byte
}

// Multipart holds the ordered children of a multipart/* node.
type Multipart struct {
	Children []*Node
}

// Unsupported marks a payload that is neither text nor a list of parts.
// Kind names what was found.
type Unsupported struct {
	Kind string
}

func (Leaf) payload()        {}
func (Multipart) payload()   {}
func (Unsupported) payload() {}

// NewLeaf builds a single-part node.
func NewLeaf(contentType string, data []byte) *Node {
	return &Node{ContentType: contentType, Payload: Leaf{Data: data}}
}

// NewMultipart builds a multipart node from children in order.
func NewMultipart(contentType string, children ...*Node) *Node {
	return &Node{ContentType: contentType, Payload: Multipart{Children: children}}
}

// IsMultipart reports whether the node carries child parts.
func (n *Node) IsMultipart() bool {
	_, ok := n.Payload.(Multipart)
	return ok
}
