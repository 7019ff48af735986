package main

import (
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRng_Ranges(t *testing.T) {
	rng := NewRng("ranges")
	for i := 0; i < 5000; i++ {
		n := rng.Int(10, 30)
		require.GreaterOrEqual(t, n, 10)
		require.LessOrEqual(t, n, 30)

		f := rng.Float(0.01, 2.0)
		require.GreaterOrEqual(t, f, 0.01)
		require.Less(t, f, 2.0)

		d := rng.Duration(5*time.Millisecond, 100*time.Millisecond)
		require.GreaterOrEqual(t, d, 5*time.Millisecond)
		require.Less(t, d, 100*time.Millisecond)
	}
}

func TestRng_IntCoversBothEnds(t *testing.T) {
	rng := NewRng("ends")
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		seen[rng.Int(1, 3)] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, seen)
}

func TestRng_FakeValues(t *testing.T) {
	rng := NewRng("fakes")
	for i := 0; i < 200; i++ {
		u, err := uuid.Parse(rng.UUID())
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), u.Version())

		ip := net.ParseIP(rng.IPv4())
		require.NotNil(t, ip)
		assert.NotNil(t, ip.To4())

		assert.NotEmpty(t, rng.UserName())
		assert.Contains(t, nouns, rng.Word())
	}
}

func TestRng_Deterministic(t *testing.T) {
	a := NewRng("same seed")
	b := NewRng("same seed")
	c := NewRng("other seed")
	var sa, sb, sc []string
	for i := 0; i < 20; i++ {
		sa = append(sa, a.UUID())
		sb = append(sb, b.UUID())
		sc = append(sc, c.UUID())
	}
	assert.Equal(t, sa, sb)
	assert.NotEqual(t, sa, sc)
}

func TestRng_BoolWithProb(t *testing.T) {
	rng := NewRng("bools")
	const n = 20000
	hits := 0
	for i := 0; i < n; i++ {
		if rng.BoolWithProb(0.1) {
			hits++
		}
	}
	assert.InDelta(t, 0.1, float64(hits)/n, 0.01)
	assert.False(t, rng.BoolWithProb(0))
	assert.True(t, rng.BoolWithProb(1))
}
