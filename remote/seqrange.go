package remote

const (
	DefaultMailbox = "INBOX"
	DefaultPage    = 1
	DefaultLimit   = 50
	// SearchLimit is the maximum number of search matches fetched
	SearchLimit = 200
)

// PageRange returns the sequence numbers of a page, newest first pages starting at 1.
// When the page is past the end the clamping yields the first message.
func PageRange(total, page, limit uint32) (start, end uint32, ok bool) {
	if total == 0 {
		return 0, 0, false
	}
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	n, p, l := int64(total), int64(page), int64(limit)
	first := max(1, n-p*l+1)
	last := max(1, n-(p-1)*l)
	if last < first {
		return 0, 0, false
	}
	return uint32(first), uint32(last), true
}

// DisplayRange converts display indices [startIndex, endIndex) where 0 is the newest
// message into a sequence range.
func DisplayRange(total, startIndex, endIndex uint32) (start, end uint32, ok bool) {
	if total == 0 {
		return 0, 0, false
	}
	first := min(startIndex, total-1)
	last := min(endIndex, total)
	if first >= last {
		return 0, 0, false
	}
	return total - last + 1, total - first, true
}

// DisplayIndex of a sequence number: 0 for the newest message
func DisplayIndex(total, seqNum uint32) uint32 {
	if seqNum > total {
		return 0
	}
	return total - seqNum
}
