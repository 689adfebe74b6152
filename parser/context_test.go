package parser

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/stretchr/testify/require"
)

// countingReader counts raw stream reads so tests can observe chunk
// cache behavior.
type countingReader struct {
	reader io.ReaderAt
	Calls  int
}

func (self *countingReader) ReadAt(buf []byte, off int64) (int, error) {
	self.Calls++
	return self.reader.ReadAt(buf, off)
}

func openTestStream(t *testing.T, name string, format CompressionFormat,
	size int64) *SystemDecompressionContext {
	t.Helper()

	stream := loadTestData(t, name)
	ctx, err := GetSystemDecompressionContext(
		bytes.NewReader(stream), int64(len(stream)), format, size,
		GetDefaultOptions())
	require.NoError(t, err)
	return ctx
}

func readAll(t *testing.T, ctx *SystemDecompressionContext) []byte {
	t.Helper()

	buf := make([]byte, ctx.Size())
	n, err := ctx.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, int(ctx.Size()), n)
	return buf
}

func TestContextXpress4KZeros(t *testing.T) {
	ctx := openTestStream(t, "xpress4k_zeros.bin", FORMAT_XPRESS4K, 4096)
	defer ctx.Close()

	assert.Equal(t, int64(4096), ctx.Size())
	assert.Equal(t, make([]byte, 4096), readAll(t, ctx))

	buf := make([]byte, 50)
	n, err := ctx.ReadAt(buf, 100)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	assert.Equal(t, make([]byte, 50), buf)
}

func TestContextXpress8KSequence(t *testing.T) {
	ctx := openTestStream(t, "xpress8k_seq.bin", FORMAT_XPRESS8K, 8192)
	defer ctx.Close()

	expected := make([]byte, 8192)
	for i := range expected {
		expected[i] = byte(i)
	}
	assert.Equal(t, expected, readAll(t, ctx))

	// The seam of the repeating 0..255 ramp.
	buf := make([]byte, 2)
	n, err := ctx.ReadAt(buf, 255)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xFF, 0x00}, buf)

	buf = make([]byte, 1192)
	n, err = ctx.ReadAt(buf, 7000)
	require.NoError(t, err)
	assert.Equal(t, 1192, n)
	assert.Equal(t, expected[7000:8192], buf)
}

func TestContextXpress4KMixed(t *testing.T) {
	// Two identical stored chunks of incompressible bytes
	// followed by a compressed zero chunk.
	stream := loadTestData(t, "xpress4k_mixed.bin")
	noise := lcgContent(42, 4096)
	expected := append(append(append([]byte{}, noise...), noise...),
		make([]byte, 4096)...)

	index, err := ParseChunkIndex(
		bytes.NewReader(stream), int64(len(stream)), 12288, 4096)
	require.NoError(t, err)
	require.Equal(t, 3, index.NumChunks())

	// All four chunk boundaries are strictly increasing.
	prev := int64(-1)
	for i := 0; i < 3; i++ {
		start, end := index.ChunkRange(i)
		assert.True(t, start > prev)
		assert.True(t, end > start)
		prev = start
	}
	assert.True(t, index.IsStored(0))
	assert.True(t, index.IsStored(1))
	assert.False(t, index.IsStored(2))

	// Each chunk decodes independently.
	decomp := NewXpressDecompressor()
	start, end := index.ChunkRange(2)
	out := make([]byte, 4096)
	require.NoError(t, decomp.Decompress(stream[start:end], out))
	assert.Equal(t, make([]byte, 4096), out)

	ctx := openTestStream(t, "xpress4k_mixed.bin", FORMAT_XPRESS4K, 12288)
	defer ctx.Close()
	assert.Equal(t, expected, readAll(t, ctx))
}

func TestContextSplitReads(t *testing.T) {
	ctx := openTestStream(t, "xpress4k_mixed.bin", FORMAT_XPRESS4K, 12288)
	defer ctx.Close()

	full := readAll(t, ctx)
	size := int(ctx.Size())

	for _, split := range []int{0, 1, 4095, 4096, 8191, 10000, 12287, 12288} {
		head := make([]byte, split)
		n, err := ctx.ReadAt(head, 0)
		if split > 0 {
			require.NoError(t, err)
		}
		require.Equal(t, split, n)

		tail := make([]byte, size-split)
		if size-split > 0 {
			n, err = ctx.ReadAt(tail, int64(split))
			require.NoError(t, err)
			require.Equal(t, size-split, n)
		}

		assert.Equal(t, full, append(head, tail...))
	}

	// Re-reading the same range is idempotent.
	again := readAll(t, ctx)
	assert.Equal(t, full, again)
}

func TestContextLzxText(t *testing.T) {
	stream := loadTestData(t, "lzx_text.bin")
	counting := &countingReader{reader: bytes.NewReader(stream)}

	ctx, err := GetSystemDecompressionContext(
		counting, int64(len(stream)), FORMAT_LZX32K, 32768,
		GetDefaultOptions())
	require.NoError(t, err)
	defer ctx.Close()

	expected := textContent(32768)
	first := readAll(t, ctx)
	assert.Equal(t, expected, first)

	buf := make([]byte, 32767)
	n, err := ctx.ReadAt(buf, 1)
	require.NoError(t, err)
	assert.Equal(t, 32767, n)
	assert.Equal(t, expected[1:], buf)

	// The chunk is cached - re-reading does not touch the raw
	// stream again.
	calls := counting.Calls
	second := readAll(t, ctx)
	assert.Equal(t, expected, second)
	assert.Equal(t, calls, counting.Calls)
	assert.True(t, ctx.Hits > 0)
}

func TestContextNoCache(t *testing.T) {
	stream := loadTestData(t, "lzx_text.bin")
	counting := &countingReader{reader: bytes.NewReader(stream)}

	options := GetDefaultOptions()
	options.ChunkCacheSize = 0

	ctx, err := GetSystemDecompressionContext(
		counting, int64(len(stream)), FORMAT_LZX32K, 32768, options)
	require.NoError(t, err)
	defer ctx.Close()

	readAll(t, ctx)
	calls := counting.Calls
	readAll(t, ctx)
	assert.True(t, counting.Calls > calls)
}

func TestContextLzxChunkBoundary(t *testing.T) {
	ctx := openTestStream(t, "lzx_two.bin", FORMAT_LZX32K, 40000)
	defer ctx.Close()

	expected := textContent(40000)
	assert.Equal(t, expected, readAll(t, ctx))

	// The last byte of chunk 0 followed by the first byte of
	// chunk 1.
	buf := make([]byte, 2)
	n, err := ctx.ReadAt(buf, 32767)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, expected[32767:32769], buf)
}

func TestContextEOFClamping(t *testing.T) {
	ctx := openTestStream(t, "lzx_two.bin", FORMAT_LZX32K, 40000)
	defer ctx.Close()

	expected := textContent(40000)

	// Reads crossing EOF are clamped.
	buf := make([]byte, 5)
	n, err := ctx.ReadAt(buf, 39999)
	assert.Equal(t, 1, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, expected[39999], buf[0])

	// Reads at or past EOF return nothing.
	n, err = ctx.ReadAt(buf, 40000)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	n, err = ctx.ReadAt(buf, 50000)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	// An empty read returns 0 and writes nothing.
	n, err = ctx.ReadAt([]byte{}, 100)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestContextInvalidArguments(t *testing.T) {
	ctx := openTestStream(t, "xpress4k_zeros.bin", FORMAT_XPRESS4K, 4096)
	defer ctx.Close()

	buf := make([]byte, 10)
	_, err := ctx.ReadAt(buf, -1)
	assert.True(t, errors.Is(err, InvalidArgumentError))

	_, err = ctx.ReadAt(nil, 0)
	assert.True(t, errors.Is(err, InvalidArgumentError))
}

func TestContextCorruptChunk(t *testing.T) {
	// Chunk 1's codeword length tables are over-subscribed.
	// Ranges within chunk 0 still read fine; anything touching
	// chunk 1 fails, and the context stays usable afterwards.
	ctx := openTestStream(t, "lzx_two_corrupt.bin", FORMAT_LZX32K, 40000)
	defer ctx.Close()

	expected := textContent(40000)

	buf := make([]byte, 32768)
	n, err := ctx.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 32768, n)
	assert.Equal(t, expected[:32768], buf)

	bad := make([]byte, 100)
	_, err = ctx.ReadAt(bad, 39000)
	assert.True(t, errors.Is(err, CorruptStreamError))

	_, err = ctx.ReadAt(make([]byte, 40000), 0)
	assert.True(t, errors.Is(err, CorruptStreamError))

	n, err = ctx.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 32768, n)
	assert.Equal(t, expected[:32768], buf)
}

func TestContextXpress16KBoundary(t *testing.T) {
	// A compressed text chunk followed by a stored incompressible
	// tail.
	ctx := openTestStream(t, "xpress16k_two.bin", FORMAT_XPRESS16K, 21384)
	defer ctx.Close()

	expected := append(textContent(16384), lcgContent(7, 5000)...)
	assert.Equal(t, expected, readAll(t, ctx))

	buf := make([]byte, 4)
	n, err := ctx.ReadAt(buf, 16382)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, expected[16382:16386], buf)
}

func TestContextStoredOnlyStream(t *testing.T) {
	// A stream whose chunks are all stored, built by hand:
	// 4096 + 4096 + 1000 logical bytes.
	content := lcgContent(3, 9192)
	table := make([]byte, 8)
	putUint32(table, 0, 4096)
	putUint32(table, 4, 8192)
	stream := append(table, content...)

	ctx, err := GetSystemDecompressionContext(
		bytes.NewReader(stream), int64(len(stream)), FORMAT_XPRESS4K,
		9192, GetDefaultOptions())
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal(t, content, readAll(t, ctx))

	buf := make([]byte, 100)
	n, err := ctx.ReadAt(buf, 4050)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, content[4050:4150], buf)
}

func TestContextEmptyFile(t *testing.T) {
	ctx, err := GetSystemDecompressionContext(
		bytes.NewReader(nil), 0, FORMAT_XPRESS4K, 0,
		GetDefaultOptions())
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal(t, int64(0), ctx.Size())

	n, err := ctx.ReadAt(make([]byte, 10), 0)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	n, err = ctx.ReadAt([]byte{}, 0)
	assert.Equal(t, 0, n)
	assert.NoError(t, err)
}

func TestContextStats(t *testing.T) {
	ctx := openTestStream(t, "lzx_two.bin", FORMAT_LZX32K, 40000)
	defer ctx.Close()

	readAll(t, ctx)

	stats := ctx.Stats()
	num_chunks, _ := stats.Get("NumChunks")
	assert.Equal(t, 2, num_chunks)
	format, _ := stats.Get("Format")
	assert.Equal(t, "LZX32K", format)
}
