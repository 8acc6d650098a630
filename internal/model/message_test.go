package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_UnpublishedImageCarriesFlag(t *testing.T) {
	raw, err := json.Marshal(NewAssistantImage("https://ik.example/fox.png", false, time.UnixMilli(1)))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, false, fields["isPublished"])
	assert.Equal(t, true, fields["isImage"])
}

func TestMessage_Published(t *testing.T) {
	at := time.UnixMilli(1)
	assert.True(t, NewAssistantImage("u", true, at).Published())
	assert.False(t, NewAssistantImage("u", false, at).Published())
	assert.False(t, NewAssistantText("hi", at).Published())
}
