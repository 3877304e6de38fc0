package nats

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectAndDurable(t *testing.T) {
	assert.Equal(t, "ingest.EMBED_DOCUMENT", Subject("EMBED_DOCUMENT"))
	assert.Equal(t, "axiom-EMBED_DOCUMENT", durableName("EMBED_DOCUMENT"))
}

func TestNatsMessageCarriesIdentityAndMetadata(t *testing.T) {
	msg := message.NewMessage("4f7c2a0e-1b5d-4c39-9d6e-2a8f0b3c7e11", []byte(`{"type":"EMBED_DOCUMENT"}`))
	msg.Metadata.Set("event_type", "EMBED_DOCUMENT")

	nm := toNatsMsg(Subject("EMBED_DOCUMENT"), msg)
	require.Equal(t, "ingest.EMBED_DOCUMENT", nm.Subject)
	assert.Equal(t, msg.UUID, nm.Header.Get(uuidHeader))

	back := fromNats(nm.Header, nm.Data)
	assert.Equal(t, msg.UUID, back.UUID)
	assert.Equal(t, []byte(msg.Payload), []byte(back.Payload))
	assert.Equal(t, "EMBED_DOCUMENT", back.Metadata.Get("event_type"))
	assert.Empty(t, back.Metadata.Get(uuidHeader), "the id header is not duplicated into metadata")
}
