package status

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sxt-network/sxt-node/pkg/bridge/submitter"
)

// Tests that need a live database are gated on SXT_TEST_DATABASE_URL and
// skipped otherwise, matching how the teacher's repository tests are
// gated on CERTEN_TEST_DB.
func testClient(t *testing.T) *Client {
	t.Helper()
	dsn := os.Getenv("SXT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SXT_TEST_DATABASE_URL not set, skipping status store tests")
	}
	c, err := NewClient(Config{DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, c.EnsureSchema(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestWatermarkRoundTrip(t *testing.T) {
	c := testClient(t)
	w := NewWatermarkStore(c)
	ctx := context.Background()

	_, ok, err := w.Watermark(ctx, "forwarder-test-unset")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, w.SetWatermark(ctx, "forwarder-test", 100))
	require.NoError(t, w.SetWatermark(ctx, "forwarder-test", 150))

	n, ok, err := w.Watermark(ctx, "forwarder-test")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(150), n)
}

func TestReportStoreRoundTrip(t *testing.T) {
	c := testClient(t)
	r := NewReportStore(c)
	ctx := context.Background()

	hash := "0xblock"
	in := submitter.StatusReport{Validated: true, BroadcastedPeers: 4, FinalizedInBlock: &hash}
	require.NoError(t, r.Record(ctx, "tx-1", in))

	out, ok, err := r.Report(ctx, "tx-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in.Validated, out.Validated)
	require.Equal(t, in.BroadcastedPeers, out.BroadcastedPeers)
	require.Equal(t, *in.FinalizedInBlock, *out.FinalizedInBlock)
}

func TestNullableStringRoundTrip(t *testing.T) {
	require.False(t, nullableString(nil).Valid)
	s := "hi"
	ns := nullableString(&s)
	require.True(t, ns.Valid)
	require.Equal(t, "hi", ns.String)
	require.Equal(t, "hi", *nullToPtr(ns))
}
