/*
The compressed stream begins with a chunk offset table: one 4 byte
(8 byte for files larger than 4GiB) little endian entry per chunk
except the first, giving the chunk's start relative to the end of the
table. The first chunk starts right after the table and the last
chunk ends at the end of the stream.
*/

package parser

import (
	"encoding/binary"
	"fmt"
	"io"
)

type ChunkIndex struct {
	uncompressed_size int64
	compressed_size   int64
	chunk_size        int64

	// num_chunks + 1 absolute chunk boundaries within the
	// compressed stream.
	offsets []int64
}

func (self *ChunkIndex) NumChunks() int {
	return len(self.offsets) - 1
}

func (self *ChunkIndex) ChunkSize() int64 {
	return self.chunk_size
}

func (self *ChunkIndex) UncompressedSize() int64 {
	return self.uncompressed_size
}

// ChunkRange returns the byte range of chunk i within the compressed
// stream.
func (self *ChunkIndex) ChunkRange(i int) (start int64, end int64) {
	return self.offsets[i], self.offsets[i+1]
}

// ChunkUncompressedSize returns the logical size of chunk i - the
// chunk size except for a short final chunk.
func (self *ChunkIndex) ChunkUncompressedSize(i int) int64 {
	return CapInt64(self.chunk_size,
		self.uncompressed_size-int64(i)*self.chunk_size)
}

// IsStored reports whether chunk i is stored literally rather than
// compressed. Incompressible chunks are stored when the compressed
// form would be no smaller.
func (self *ChunkIndex) IsStored(i int) bool {
	return self.offsets[i+1]-self.offsets[i] == self.ChunkUncompressedSize(i)
}

// ParseChunkIndex reads and validates the chunk offset table at the
// start of the compressed stream.
func ParseChunkIndex(reader io.ReaderAt, compressed_size int64,
	uncompressed_size int64, chunk_size int64) (*ChunkIndex, error) {

	if uncompressed_size < 0 || compressed_size < 0 {
		return nil, InvalidArgumentError
	}

	num_chunks := (uncompressed_size + chunk_size - 1) / chunk_size

	self := &ChunkIndex{
		uncompressed_size: uncompressed_size,
		compressed_size:   compressed_size,
		chunk_size:        chunk_size,
		offsets:           make([]int64, num_chunks+1),
	}

	if num_chunks == 0 {
		// An empty file has no table and no chunks.
		self.offsets[0] = 0
		return self, nil
	}

	entry_size := int64(4)
	if uncompressed_size > 0xFFFFFFFF {
		entry_size = 8
	}

	table_size := (num_chunks - 1) * entry_size
	if table_size > compressed_size {
		return nil, fmt.Errorf(
			"%w: chunk table larger than stream", CorruptStreamError)
	}

	table := make([]byte, table_size)
	_, err := reader.ReadAt(table, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}

	// The first chunk has an implicit offset of zero relative to
	// the end of the table.
	self.offsets[0] = table_size
	for i := int64(1); i < num_chunks; i++ {
		var rel int64
		if entry_size == 4 {
			rel = int64(binary.LittleEndian.Uint32(
				table[(i-1)*4:]))
		} else {
			rel = int64(binary.LittleEndian.Uint64(
				table[(i-1)*8:]))
		}
		self.offsets[i] = table_size + rel
	}
	self.offsets[num_chunks] = compressed_size

	for i := int64(0); i < num_chunks; i++ {
		if self.offsets[i] >= self.offsets[i+1] {
			return nil, fmt.Errorf(
				"%w: chunk table is not monotonic at chunk %v",
				CorruptStreamError, i)
		}
		if self.offsets[i+1]-self.offsets[i] > self.ChunkUncompressedSize(int(i)) {
			return nil, fmt.Errorf(
				"%w: chunk %v larger than its uncompressed size",
				CorruptStreamError, i)
		}
	}

	return self, nil
}
