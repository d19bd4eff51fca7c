package buddymem

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Allocated", KindAllocated.String())
	assert.Equal(t, "Free", KindFree.String())
	assert.Equal(t, "Unknown", Kind(7).String())
}

func TestManager_DumpFresh(t *testing.T) {
	m := newTestManager(t, 65536)

	assert.Equal(t, []Descriptor{
		{Start: 0, End: 0xFFFF, Kind: KindFree, Size: 65536},
	}, m.Dump())
}

func TestManager_DumpAddressOrder(t *testing.T) {
	m := newTestManager(t, 65536)

	id0, err := m.Insert(500, bytes.Repeat([]byte("1"), 500))
	require.NoError(t, err)
	id1, err := m.Insert(1000, bytes.Repeat([]byte("2"), 1000))
	require.NoError(t, err)
	id2, err := m.Insert(200, []byte("333"))
	require.NoError(t, err)

	expected := []Descriptor{
		{
			Start: 0, End: 511, Kind: KindAllocated, Size: 512, ID: id0, Used: 500,
			Snippet: bytes.Repeat([]byte("1"), SnippetLimit), Truncated: true,
		},
		{
			Start: 512, End: 767, Kind: KindAllocated, Size: 256, ID: id2, Used: 3,
			Snippet: []byte("333"),
		},
		{Start: 768, End: 1023, Kind: KindFree, Size: 256},
		{
			Start: 1024, End: 2047, Kind: KindAllocated, Size: 1024, ID: id1, Used: 1000,
			Snippet: bytes.Repeat([]byte("2"), SnippetLimit), Truncated: true,
		},
		{Start: 2048, End: 4095, Kind: KindFree, Size: 2048},
		{Start: 4096, End: 8191, Kind: KindFree, Size: 4096},
		{Start: 8192, End: 16383, Kind: KindFree, Size: 8192},
		{Start: 16384, End: 32767, Kind: KindFree, Size: 16384},
		{Start: 32768, End: 65535, Kind: KindFree, Size: 32768},
	}
	assert.Equal(t, expected, m.Dump())
	assert.Equal(t, m.Dump(), m.Dump())
	checkManagerInvariants(t, m)
}

func TestManager_DumpWholeArenaAllocated(t *testing.T) {
	m := newTestManager(t, 16)

	id, err := m.Insert(16, []byte("0123456789abcdef"))
	require.NoError(t, err)

	assert.Equal(t, []Descriptor{
		{
			Start: 0, End: 15, Kind: KindAllocated, Size: 16, ID: id, Used: 16,
			Snippet: []byte("0123456789abcdef"),
		},
	}, m.Dump())
}
