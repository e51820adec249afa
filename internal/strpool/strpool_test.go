package strpool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokahuke/ryan/internal/strpool"
)

func TestInternDeduplicates(t *testing.T) {
	p := strpool.New()

	a := p.Intern("hello")
	b := p.Intern("hello")
	c := p.Intern("world")

	require.Equal(t, a, b)
	require.Equal(t, 2, p.Len())
	require.NotEqual(t, a, c)
}

func TestInternEmptyPool(t *testing.T) {
	p := strpool.New()
	require.Equal(t, 0, p.Len())
}
