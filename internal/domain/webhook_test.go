package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeWireFormat(t *testing.T) {
	env := Envelope{
		Topic:      TopicOrdersCreate,
		ShopDomain: "acme.myshopify.com",
		HMAC:       "c2ln",
		Body:       `{"id": 42, "total_price": "9.99"}`,
	}

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "topic")
	assert.Contains(t, fields, "shopDomain")
	assert.Contains(t, fields, "hmac")
	assert.Contains(t, fields, "body")

	var back Envelope
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, env, back)
	assert.Equal(t, `{"id": 42, "total_price": "9.99"}`, back.Body,
		"body survives transport byte for byte")
}
