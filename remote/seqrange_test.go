package remote

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRange(t *testing.T) {
	fixtures := []struct {
		total, page, limit uint32
		start, end         uint32
		ok                 bool
	}{
		{0, 1, 50, 0, 0, false},
		{5, 1, 2, 4, 5, true},
		{5, 2, 2, 2, 3, true},
		// past the end: clamped to a single message
		{5, 3, 2, 1, 1, true},
		{5, 4, 2, 1, 1, true},
		{100, 1, 50, 51, 100, true},
		{100, 2, 50, 1, 50, true},
		{3, 1, 50, 1, 3, true},
		{3, 0, 0, 1, 3, true},
	}

	for _, fixture := range fixtures {
		t.Run(fmt.Sprintf("%d-%d-%d", fixture.total, fixture.page, fixture.limit), func(t *testing.T) {
			start, end, ok := PageRange(fixture.total, fixture.page, fixture.limit)
			assert.Equal(t, fixture.ok, ok)
			assert.Equal(t, fixture.start, start)
			assert.Equal(t, fixture.end, end)
		})
	}
}

func TestDisplayRange(t *testing.T) {
	fixtures := []struct {
		total, from, to uint32
		start, end      uint32
		ok              bool
	}{
		{0, 0, 50, 0, 0, false},
		{5, 0, 2, 4, 5, true},
		{5, 2, 4, 2, 3, true},
		{5, 0, 50, 1, 5, true},
		{5, 4, 5, 1, 1, true},
		// a start past the end is clamped to the oldest message
		{5, 5, 10, 1, 1, true},
		{5, 3, 3, 0, 0, false},
		{5, 9, 20, 1, 1, true},
	}

	for _, fixture := range fixtures {
		t.Run(fmt.Sprintf("%d-%d-%d", fixture.total, fixture.from, fixture.to), func(t *testing.T) {
			start, end, ok := DisplayRange(fixture.total, fixture.from, fixture.to)
			assert.Equal(t, fixture.ok, ok)
			assert.Equal(t, fixture.start, start)
			assert.Equal(t, fixture.end, end)
		})
	}
}

func seqSet(start, end uint32) map[uint32]bool {
	set := make(map[uint32]bool)
	for seq := start; seq <= end && seq > 0; seq++ {
		set[seq] = true
	}
	return set
}

func TestPagesMatchDisplayRange(t *testing.T) {
	for total := uint32(1); total <= 40; total++ {
		for limit := uint32(1); limit <= 7; limit++ {
			for pages := uint32(1); pages*limit < total; pages++ {
				union := make(map[uint32]bool)
				previousStart := total + 1
				for page := uint32(1); page <= pages; page++ {
					start, end, ok := PageRange(total, page, limit)
					assert.True(t, ok)
					// contiguous and newest first
					assert.Equal(t, previousStart-1, end)
					previousStart = start
					for seq := range seqSet(start, end) {
						union[seq] = true
					}
				}
				start, end, ok := DisplayRange(total, 0, pages*limit)
				assert.True(t, ok)
				assert.Equal(t, seqSet(start, end), union, "total=%d limit=%d pages=%d", total, limit, pages)
			}
		}
	}
}

func TestDisplayIndex(t *testing.T) {
	assert.Equal(t, uint32(0), DisplayIndex(5, 5))
	assert.Equal(t, uint32(4), DisplayIndex(5, 1))
	assert.Equal(t, uint32(0), DisplayIndex(5, 6))
}
