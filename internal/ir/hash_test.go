package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationsDigest_Stable(t *testing.T) {
	a := []Operation{
		CreateNode(1, json.RawMessage(`{"type":"value","value":1}`)),
		ConnectNodes(2, 1),
	}
	b := []Operation{
		CreateNode(1, json.RawMessage(`{"value":1, "type":"value"}`)),
		ConnectNodes(2, 1),
	}

	da, err := OperationsDigest(a)
	require.NoError(t, err)
	db, err := OperationsDigest(b)
	require.NoError(t, err)

	assert.Len(t, da, 64)
	assert.Equal(t, da, db, "config key order must not matter")
}

func TestOperationsDigest_Differs(t *testing.T) {
	a, err := OperationsDigest([]Operation{ConnectNodes(2, 1)})
	require.NoError(t, err)
	b, err := OperationsDigest([]Operation{ConnectNodes(1, 2)})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashWithDomain_Separation(t *testing.T) {
	assert.NotEqual(t, hashWithDomain("a", []byte("bc")), hashWithDomain("ab", []byte("c")))
}
