package parser

import (
	"fmt"
	"io"
	"sync"

	"github.com/Velocidex/ordereddict"
	lru "github.com/hashicorp/golang-lru/v2"
)

// decompressor is what both chunk decoders look like to the context.
type decompressor interface {
	Decompress(in []byte, out []byte) error
}

// SystemDecompressionContext is a random access reader over the
// logical (uncompressed) content of a system compressed file. It
// owns a decoder, a scratch buffer for raw chunk data and an LRU of
// decoded chunks, so a single context must not be used concurrently.
// Independent contexts over the same stream share nothing mutable.
type SystemDecompressionContext struct {
	mu sync.Mutex

	reader io.ReaderAt
	format CompressionFormat
	index  *ChunkIndex

	decoder decompressor

	// Raw compressed bytes of the chunk being decoded.
	compressed_buf []byte

	// Decoded chunks by chunk number.
	chunk_cache *lru.Cache[int64, []byte]

	Hits int64
	Miss int64
}

// GetSystemDecompressionContext builds a context from what the
// filesystem layer provides: the raw compressed stream (the
// WofCompressedData ADS), its size, the algorithm from the reparse
// point and the logical file size.
func GetSystemDecompressionContext(reader io.ReaderAt,
	compressed_size int64, format CompressionFormat,
	uncompressed_size int64, options Options) (
	*SystemDecompressionContext, error) {

	STATS.Inc_DecompressionContext()

	if !format.IsValid() {
		return nil, InvalidFormatError
	}

	index, err := ParseChunkIndex(reader, compressed_size,
		uncompressed_size, format.ChunkSize())
	if err != nil {
		return nil, err
	}

	self := &SystemDecompressionContext{
		reader:         reader,
		format:         format,
		index:          index,
		compressed_buf: make([]byte, format.ChunkSize()),
	}

	if format == FORMAT_LZX32K {
		self.decoder = NewLzxDecompressor()
	} else {
		self.decoder = NewXpressDecompressor()
	}

	if options.ChunkCacheSize > 0 {
		self.chunk_cache, err = lru.New[int64, []byte](
			options.ChunkCacheSize)
		if err != nil {
			return nil, err
		}
	}

	return self, nil
}

func (self *SystemDecompressionContext) Size() int64 {
	return self.index.UncompressedSize()
}

func (self *SystemDecompressionContext) Format() CompressionFormat {
	return self.format
}

func (self *SystemDecompressionContext) Index() *ChunkIndex {
	return self.index
}

func (self *SystemDecompressionContext) Stats() *ordereddict.Dict {
	self.mu.Lock()
	defer self.mu.Unlock()

	cached := 0
	if self.chunk_cache != nil {
		cached = self.chunk_cache.Len()
	}

	return ordereddict.NewDict().
		Set("Format", self.format.String()).
		Set("UncompressedSize", self.index.UncompressedSize()).
		Set("NumChunks", self.index.NumChunks()).
		Set("CachedChunks", cached).
		Set("Hits", self.Hits).
		Set("Miss", self.Miss)
}

// getChunk returns the decoded content of chunk i, from the cache if
// possible. The returned slice is owned by the cache and must not be
// retained or written to by callers.
func (self *SystemDecompressionContext) getChunk(i int64) ([]byte, error) {
	if self.chunk_cache != nil {
		cached, pres := self.chunk_cache.Get(i)
		if pres {
			self.Hits++
			STATS.Inc_ChunkCacheHit()
			return cached, nil
		}
	}
	self.Miss++

	start, end := self.index.ChunkRange(int(i))
	compressed := self.compressed_buf[:end-start]
	n, err := self.reader.ReadAt(compressed, start)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if int64(n) != end-start {
		return nil, fmt.Errorf("%w: %v", CorruptStreamError,
			shortReadError)
	}

	chunk_len := self.index.ChunkUncompressedSize(int(i))
	chunk := make([]byte, chunk_len)

	if self.index.IsStored(int(i)) {
		// Incompressible chunks are stored literally.
		STATS.Inc_ChunkStored()
		copy(chunk, compressed)
	} else {
		STATS.Inc_ChunkDecode()
		DebugPrint("Decoding chunk %v (%v -> %v bytes)\n",
			i, len(compressed), chunk_len)
		err := self.decoder.Decompress(compressed, chunk)
		if err != nil {
			return nil, err
		}
	}

	if self.chunk_cache != nil {
		self.chunk_cache.Add(i, chunk)
	}

	return chunk, nil
}

// ReadAt reads uncompressed content from the logical file position
// off. Reads within the file are satisfied completely; reads
// crossing the end of the file are clamped and return io.EOF
// together with the short count. Any decode error fails the whole
// call - no partial result is reported.
func (self *SystemDecompressionContext) ReadAt(
	buf []byte, off int64) (int, error) {

	if buf == nil {
		return 0, InvalidArgumentError
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset", InvalidArgumentError)
	}

	self.mu.Lock()
	defer self.mu.Unlock()

	size := self.index.UncompressedSize()
	if off >= size {
		if len(buf) == 0 && off == size {
			return 0, nil
		}
		return 0, io.EOF
	}

	count := CapInt64(int64(len(buf)), size-off)

	chunk_size := self.index.ChunkSize()
	buf_idx := int64(0)
	for buf_idx < count {
		pos := off + buf_idx
		chunk_idx := pos / chunk_size
		chunk_off := pos % chunk_size

		chunk, err := self.getChunk(chunk_idx)
		if err != nil {
			return 0, err
		}

		to_copy := CapInt64(count-buf_idx, int64(len(chunk))-chunk_off)
		copy(buf[buf_idx:buf_idx+to_copy],
			chunk[chunk_off:chunk_off+to_copy])
		buf_idx += to_copy
	}

	if count < int64(len(buf)) {
		return int(count), io.EOF
	}
	return int(count), nil
}

// Close releases the scratch and cached chunks. The context must not
// be used afterwards.
func (self *SystemDecompressionContext) Close() {
	self.mu.Lock()
	defer self.mu.Unlock()

	if self.chunk_cache != nil {
		self.chunk_cache.Purge()
	}
	self.compressed_buf = nil
}
