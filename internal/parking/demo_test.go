package parking

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDemo(t *testing.T) {
	h := newTelemetryHarness()
	facility, clock := newTestFacility(300, at(3, 10, 0, 0))
	f, err := NewInstrumentedFacility(facility, h.provider)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, RunDemo(context.Background(), &out, f, clock))

	got := out.String()
	assert.Contains(t, got, "Spaces available: 300 / 300")
	assert.Contains(t, got, "Exit done for DHA-5678. Paid: 150.00 (card)")
	assert.Contains(t, got, "SYL-1111 exited. No payment needed.")
	assert.Contains(t, got, "CTG-9090 entered using single-use pass SP-009 (now used=true).")
	assert.Contains(t, got, "Spaces available now: 300 / 300")
	assert.Len(t, facility.Registry.Log(), 7)
}
