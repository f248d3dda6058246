package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte(`[{"id":1,"lot":"240310-1-VAL","price_per_kg":"0.8","size_quantities":{"10":100,"22-24":5},"paid":false,"notes":"Παραλαβή"}]`)

	doc, err := encode("receipts", payload)
	require.NoError(t, err)
	require.NotEmpty(t, doc)
	assert.Equal(t, "_id", doc[0].Key)
	assert.Equal(t, "receipts", doc[0].Value)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	got, err := decode("receipts", bson.Raw(raw))
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got))
}

func TestEncodeUserMap(t *testing.T) {
	payload := []byte(`{"admin":{"password":"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$a2V5","role":"admin","full_name":"Administrator"}}`)

	doc, err := encode("users", payload)
	require.NoError(t, err)
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	got, err := decode("users", bson.Raw(raw))
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got))
}

func TestEncodeRejectsInvalidJSON(t *testing.T) {
	_, err := encode("orders", []byte(`[{`))
	assert.Error(t, err)
}
