package mailbox

type Status struct {
	// The number of messages in this mailbox.
	Messages uint32 `json:"messages"`
	// Together with a UID, it is a unique identifier for a message.
	UidValidity uint32 `json:"uidValidity"`
	// Predicted next UID (hint only).
	UidNext uint32 `json:"uidNext"`
}

// Page is the result of a page, range or search fetch
type Page struct {
	Headers     []Header `json:"headers"`
	Total       uint32   `json:"total"`
	HasMore     bool     `json:"hasMore"`
	SkippedUIDs []uint32 `json:"skippedUids,omitempty"`
}

func EmptyPage(total uint32) Page {
	return Page{
		Headers: make([]Header, 0),
		Total:   total,
	}
}

// Progress is a snapshot of an archive run
type Progress struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Errors    int    `json:"errors"`
	Active    bool   `json:"active"`
	LastError string `json:"lastError,omitempty"`
}
