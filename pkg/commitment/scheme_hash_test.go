package commitment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sxt-network/sxt-node/pkg/scalar"
)

func TestHashAppendMatchesSequentialChain(t *testing.T) {
	full := scalar.Column{Type: scalar.VarChar(), VarChar: []string{"a", "b", "c"}}
	head := scalar.Column{Type: scalar.VarChar(), VarChar: []string{"a"}}
	mid := scalar.Column{Type: scalar.VarChar(), VarChar: []string{"b"}}
	tail := scalar.Column{Type: scalar.VarChar(), VarChar: []string{"c"}}

	h1, err := hashCommitColumn(head)
	require.NoError(t, err)
	h2, err := hashAppendColumn(h1, mid)
	require.NoError(t, err)
	h3, err := hashAppendColumn(h2, tail)
	require.NoError(t, err)

	direct, err := hashCommitColumn(full)
	require.NoError(t, err)

	// A hash-chain accumulator is inherently order- and chunking-sensitive:
	// appending in three steps must not equal committing the whole column
	// at once, only repeated appends of the same chunking must agree.
	require.NotEqual(t, direct, h3)

	h1again, err := hashCommitColumn(head)
	require.NoError(t, err)
	require.Equal(t, h1, h1again)
}
