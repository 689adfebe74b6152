/*
Decompression support for the XPRESS Huffman format used by WOF
system compression (XPRESS4K/8K/16K chunks).

Reference:
https://msdn.microsoft.com/en-us/library/hh554002.aspx
(MS-XCA: Xpress Compression Algorithm)

Each chunk is a single block: a 256 byte table of nibble packed
codeword lengths for a 512 symbol alphabet, followed by the entropy
coded body. Symbols 0..255 are literals. Symbols 256..511 encode a
match: of (symbol - 256), the low 4 bits are a length header and the
high 4 bits give the number of extra offset bits.
*/

package parser

import (
	"errors"
	"fmt"
)

const (
	XPRESS_NUM_SYMBOLS      = 512
	XPRESS_MAX_CODEWORD_LEN = 15
	XPRESS_MIN_MATCH_LEN    = 3
	XPRESS_TABLEBITS        = 12
)

var (
	xpressTruncatedError = errors.New("XPRESS block too small for Huffman table")
	xpressBadOffsetError = errors.New("XPRESS match offset underflows output")
	xpressBadLengthError = errors.New("XPRESS match length overflows output")
)

// XpressDecompressor holds the decode table and scratch for one
// decoder instance. It is reused across chunks but is not safe for
// concurrent use.
type XpressDecompressor struct {
	lens          [XPRESS_NUM_SYMBOLS]byte
	decode_table  []uint16
	working_space []uint16
}

func NewXpressDecompressor() *XpressDecompressor {
	return &XpressDecompressor{
		decode_table: make([]uint16,
			DecodeTableSize(XPRESS_NUM_SYMBOLS, XPRESS_TABLEBITS)),
		working_space: make([]uint16,
			WorkingSpaceSize(XPRESS_NUM_SYMBOLS, XPRESS_MAX_CODEWORD_LEN)),
	}
}

// Decompress decodes one XPRESS compressed chunk into out. The chunk
// must decode to exactly len(out) bytes.
func (self *XpressDecompressor) Decompress(in []byte, out []byte) error {
	STATS.Inc_XpressDecompress()

	// The codeword lengths are stored as 512 nibbles up front.
	if len(in) < XPRESS_NUM_SYMBOLS/2 {
		return fmt.Errorf("%w: %v", CorruptStreamError, xpressTruncatedError)
	}
	for i := 0; i < XPRESS_NUM_SYMBOLS/2; i++ {
		self.lens[i*2] = in[i] & 0xF
		self.lens[i*2+1] = in[i] >> 4
	}

	err := MakeHuffmanDecodeTable(self.decode_table, XPRESS_NUM_SYMBOLS,
		XPRESS_TABLEBITS, self.lens[:], XPRESS_MAX_CODEWORD_LEN,
		self.working_space)
	if err != nil {
		return fmt.Errorf("%w: %v", CorruptStreamError, err)
	}

	is := &InputBitstream{}
	is.Init(in[XPRESS_NUM_SYMBOLS/2:])

	out_next := 0
	out_end := len(out)

	for out_next < out_end {
		sym := ReadHuffSym(is, self.decode_table,
			XPRESS_TABLEBITS, XPRESS_MAX_CODEWORD_LEN)
		if sym < 256 {
			// Literal
			out[out_next] = byte(sym)
			out_next++
			continue
		}

		// Match
		s := sym - 256
		length := int(s & 0xF)
		offset_bits := s >> 4

		is.EnsureBits(16)
		offset := (1 << offset_bits) | int(is.PopBits(offset_bits))

		if length == 0xF {
			length += int(is.ReadByte())
			if length == 0xF+0xFF {
				length = int(is.ReadUint16())
			}
		}
		length += XPRESS_MIN_MATCH_LEN

		if offset > out_next {
			return fmt.Errorf("%w: %v", CorruptStreamError,
				xpressBadOffsetError)
		}
		if length > out_end-out_next {
			return fmt.Errorf("%w: %v", CorruptStreamError,
				xpressBadLengthError)
		}

		out_next = lz_copy(out, out_next, length, offset,
			XPRESS_MIN_MATCH_LEN)
	}

	return nil
}
