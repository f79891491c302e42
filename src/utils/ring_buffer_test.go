package utils

import (
	"testing"

	"market-structure/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rbBar(ts int64, close float64) models.MBar {
	return models.MBar{
		Symbol:    "TEST",
		Timestamp: ts,
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Volume:    1,
	}
}

// -----------------------------------------------------------------------------

func TestRingBufferAppendAndGetAll(t *testing.T) {
	rb := NewRingBuffer("TEST", 3)

	rb.Append(rbBar(100, 10))
	rb.Append(rbBar(200, 11))

	assert.Equal(t, 2, rb.Size())
	assert.Equal(t, 3, rb.Capacity())

	all := rb.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, int64(100), all[0].Timestamp)
	assert.Equal(t, int64(200), all[1].Timestamp)
	assert.Equal(t, "TEST", all[0].Symbol)
}

// -----------------------------------------------------------------------------

func TestRingBufferOverwritesOldest(t *testing.T) {
	rb := NewRingBuffer("TEST", 3)

	for i := int64(1); i <= 5; i++ {
		rb.Append(rbBar(i*100, float64(i)))
	}

	assert.Equal(t, 3, rb.Size())

	all := rb.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, int64(300), all[0].Timestamp)
	assert.Equal(t, int64(500), all[2].Timestamp)
}

// -----------------------------------------------------------------------------

func TestRingBufferGetLatest(t *testing.T) {
	rb := NewRingBuffer("TEST", 4)
	for i := int64(1); i <= 4; i++ {
		rb.Append(rbBar(i*100, float64(i)))
	}

	latest := rb.GetLatest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(300), latest[0].Timestamp)
	assert.Equal(t, int64(400), latest[1].Timestamp)

	// Requesting more than stored caps at size.
	assert.Len(t, rb.GetLatest(10), 4)
	assert.Empty(t, rb.GetLatest(0))
}

// -----------------------------------------------------------------------------

func TestBarHistorySnapshot(t *testing.T) {
	bh := NewBarHistory(10)

	bh.AddBar("SPY", rbBar(100, 10))
	bh.AddBar("SPY", rbBar(200, 11))
	bh.AddBar("QQQ", rbBar(100, 20))

	assert.True(t, bh.HasSymbol("SPY"))
	assert.False(t, bh.HasSymbol("AAPL"))
	assert.Equal(t, 2, bh.SymbolCount())

	snap := bh.Snapshot()
	require.Len(t, snap, 2)
	assert.Len(t, snap["SPY"], 2)
	assert.Equal(t, int64(200), snap["SPY"][1].Timestamp)

	bh.Cleanup()
	assert.Equal(t, 0, bh.SymbolCount())
}
