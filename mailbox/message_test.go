package mailbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightMessageKeepsRawOutOfJSON(t *testing.T) {
	full := &FullMessage{
		Header: Header{UID: 10, Subject: "hello"},
		Attachments: []Attachment{
			{AttachmentInfo: AttachmentInfo{Filename: "a.pdf", Real: true}, Content: []byte("pdf")},
		},
		RawSource: []byte("raw message"),
	}
	light := full.Light()
	assert.Equal(t, []byte("raw message"), light.Raw)
	require.Len(t, light.Attachments, 1)
	assert.Equal(t, "a.pdf", light.Attachments[0].Filename)

	data, err := json.Marshal(light)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "raw message")
	assert.NotContains(t, string(data), "cmF3IG1lc3NhZ2U")

	data, err = json.Marshal(full)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rawSource":"cmF3IG1lc3NhZ2U="`)
}

func TestHeaderSortKey(t *testing.T) {
	assert.Equal(t, "2024-01-02T00:00:00Z", Header{InternalDate: "2024-01-02T00:00:00Z", Date: "2020"}.SortKey())
	assert.Equal(t, "2020", Header{Date: "2020"}.SortKey())
	assert.Equal(t, "Unknown <unknown@unknown.com>", UnknownSender().String())
}
