package mailbox

import (
	"strings"

	"github.com/creativeprojects/mailsync/lib"
)

type SpecialUse string

const (
	SpecialNone    SpecialUse = ""
	SpecialInbox   SpecialUse = "inbox"
	SpecialSent    SpecialUse = "sent"
	SpecialTrash   SpecialUse = "trash"
	SpecialDrafts  SpecialUse = "drafts"
	SpecialJunk    SpecialUse = "junk"
	SpecialArchive SpecialUse = "archive"
)

// Node is one mailbox in the account tree
type Node struct {
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	Delimiter  string     `json:"delimiter"`
	Attributes []string   `json:"attributes"`
	SpecialUse SpecialUse `json:"specialUse,omitempty"`
	Selectable bool       `json:"selectable"`
	Children   []*Node    `json:"children"`
}

// NewNode derives the display name, special use and selectability from a listing entry
func NewNode(path, delimiter string, attributes []string) *Node {
	return &Node{
		Name:       lib.LeafName(path, delimiter),
		Path:       path,
		Delimiter:  delimiter,
		Attributes: attributes,
		SpecialUse: DetectSpecialUse(path, attributes),
		Selectable: isSelectable(attributes),
		Children:   make([]*Node, 0),
	}
}

// DetectSpecialUse looks at the server attributes first, then at the mailbox path
func DetectSpecialUse(path string, attributes []string) SpecialUse {
	for _, attribute := range attributes {
		attr := strings.ToLower(attribute)
		switch {
		case strings.Contains(attr, "sent"):
			return SpecialSent
		case strings.Contains(attr, "trash"), strings.Contains(attr, "deleted"):
			return SpecialTrash
		case strings.Contains(attr, "draft"):
			return SpecialDrafts
		case strings.Contains(attr, "junk"), strings.Contains(attr, "spam"):
			return SpecialJunk
		case strings.Contains(attr, "archive"):
			return SpecialArchive
		}
	}
	name := strings.ToLower(path)
	switch {
	case name == "inbox":
		return SpecialInbox
	case strings.Contains(name, "sent"):
		return SpecialSent
	case strings.Contains(name, "trash"), strings.Contains(name, "deleted"):
		return SpecialTrash
	case strings.Contains(name, "draft"):
		return SpecialDrafts
	case strings.Contains(name, "junk"), strings.Contains(name, "spam"):
		return SpecialJunk
	case strings.Contains(name, "archive"):
		return SpecialArchive
	}
	return SpecialNone
}

func isSelectable(attributes []string) bool {
	for _, attribute := range attributes {
		attr := strings.ToLower(attribute)
		if strings.Contains(attr, "noselect") || strings.Contains(attr, "nonexistent") {
			return false
		}
	}
	return true
}

// BuildTree assembles a flat listing into a tree, keeping the listing order.
// A node attaches under the first top-level node whose path is its parent path,
// otherwise it stays at the top level.
func BuildTree(nodes []*Node) []*Node {
	roots := make([]*Node, 0, len(nodes))
	for _, node := range nodes {
		parent := lib.ParentPath(node.Path, node.Delimiter)
		attached := false
		if parent != "" {
			for _, root := range roots {
				if root.Path == parent {
					root.Children = append(root.Children, node)
					attached = true
					break
				}
			}
		}
		if !attached {
			roots = append(roots, node)
		}
	}
	return roots
}

// Find walks the tree looking for a path
func Find(nodes []*Node, path string) *Node {
	for _, node := range nodes {
		if node.Path == path {
			return node
		}
		if found := Find(node.Children, path); found != nil {
			return found
		}
	}
	return nil
}
