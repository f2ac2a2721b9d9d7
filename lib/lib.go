package lib

import "strings"

// LeafName returns the last segment of a hierarchical mailbox path
func LeafName(path, delimiter string) string {
	if delimiter == "" {
		return path
	}
	if index := strings.LastIndex(path, delimiter); index >= 0 {
		return path[index+len(delimiter):]
	}
	return path
}

// ParentPath returns the path of the parent mailbox, or an empty string for a top level mailbox
func ParentPath(path, delimiter string) string {
	if delimiter == "" {
		return ""
	}
	if index := strings.LastIndex(path, delimiter); index >= 0 {
		return path[:index]
	}
	return ""
}
