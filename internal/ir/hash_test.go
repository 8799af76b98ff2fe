package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateKeyDeterminism(t *testing.T) {
	k1, err := CoordinateKey(1.5, 2.5, 3.5, 1700000000)
	require.NoError(t, err)

	k2, err := CoordinateKey(1.5, 2.5, 3.5, 1700000000)
	require.NoError(t, err)

	assert.Equal(t, k1, k2, "CoordinateKey must be deterministic")
	assert.Len(t, k1, 64, "SHA-256 hex is 64 characters")
}

func TestCoordinateKeyChangesWithInput(t *testing.T) {
	base := MustCoordinateKey(1, 2, 3, 10)

	assert.NotEqual(t, base, MustCoordinateKey(1.0000000001, 2, 3, 10), "knowledge")
	assert.NotEqual(t, base, MustCoordinateKey(1, 2.0000000001, 3, 10), "time")
	assert.NotEqual(t, base, MustCoordinateKey(1, 2, 3.0000000001, 10), "entropy")
	assert.NotEqual(t, base, MustCoordinateKey(1, 2, 3, 11), "bucket")
}

func TestCoordinateKeyComponentOrderMatters(t *testing.T) {
	assert.NotEqual(t, MustCoordinateKey(1, 2, 3, 0), MustCoordinateKey(3, 2, 1, 0))
}

func TestCoordinateKeyNextULP(t *testing.T) {
	x := 0.1
	assert.NotEqual(t,
		MustCoordinateKey(x, 0, 0, 0),
		MustCoordinateKey(math.Nextafter(x, 1), 0, 0, 0),
	)
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t, hashWithDomain(DomainCoordinate, data), hashWithDomain(DomainTrace, data))
}

func TestTraceHash(t *testing.T) {
	h1, err := TraceHash(IRObject{"steps": IRArray{IRString("measure")}})
	require.NoError(t, err)
	h2, err := TraceHash(IRObject{"steps": IRArray{IRString("measure")}})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = TraceHash(IRObject{"bad": nil})
	assert.Error(t, err)
}
