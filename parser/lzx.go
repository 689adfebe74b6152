/*
Decompression support for the LZX variant used by WOF system
compression (LZX32K chunks).

Reference:
https://msdn.microsoft.com/en-us/library/cc483133.aspx
(LZX DELTA Compression and Decompression)

This is the simplified WIM form of LZX: a fixed 32768 byte window, 30
position slots, no intervals, and with the E8 call translation
disabled. Each chunk is an independent compressed buffer made of one
or more blocks. Codeword lengths carry over from block to block
within a chunk; the recent offsets queue starts at {1, 1, 1} for
every chunk and is not carried across chunks.
*/

package parser

import (
	"errors"
	"fmt"
)

const (
	LZX_WINDOW_SIZE        = 32768
	LZX_NUM_POSITION_SLOTS = 30
	LZX_NUM_RECENT_OFFSETS = 3
	LZX_MIN_MATCH_LEN      = 2

	LZX_NUM_CHARS               = 256
	LZX_MAINCODE_NUM_SYMBOLS    = LZX_NUM_CHARS + 8*LZX_NUM_POSITION_SLOTS
	LZX_LENCODE_NUM_SYMBOLS     = 249
	LZX_PRECODE_NUM_SYMBOLS     = 20
	LZX_ALIGNEDCODE_NUM_SYMBOLS = 8

	LZX_MAINCODE_TABLEBITS    = 11
	LZX_LENCODE_TABLEBITS     = 10
	LZX_PRECODE_TABLEBITS     = 7
	LZX_ALIGNEDCODE_TABLEBITS = 7

	LZX_MAX_MAIN_CODEWORD_LEN    = 16
	LZX_MAX_LEN_CODEWORD_LEN     = 15
	LZX_MAX_PRE_CODEWORD_LEN     = 7
	LZX_MAX_ALIGNED_CODEWORD_LEN = 7

	LZX_BLOCKTYPE_VERBATIM     = 1
	LZX_BLOCKTYPE_ALIGNED      = 2
	LZX_BLOCKTYPE_UNCOMPRESSED = 3

	LZX_DEFAULT_BLOCK_SIZE = 32768
)

// Number of extra offset bits and base formatted offset for each
// position slot. Slots 0..2 are the recent offsets queue.
var lzx_extra_offset_bits = [LZX_NUM_POSITION_SLOTS]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

var lzx_position_base = [LZX_NUM_POSITION_SLOTS]int{
	0, 1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 48, 64, 96, 128, 192,
	256, 384, 512, 768, 1024, 1536, 2048, 3072, 4096, 6144,
	8192, 12288, 16384, 24576,
}

var (
	lzxBadBlockTypeError = errors.New("LZX invalid block type")
	lzxBadBlockSizeError = errors.New("LZX invalid block size")
	lzxBadPreSymError    = errors.New("LZX invalid precode symbol")
	lzxBadRunError       = errors.New("LZX codeword length run overflows alphabet")
	lzxBadOffsetError    = errors.New("LZX match offset out of range")
	lzxBadLengthError    = errors.New("LZX match length overflows block")
	lzxBadRecentError    = errors.New("LZX zero recent offset")
)

// LzxDecompressor holds the decode tables and scratch for one
// decoder instance. It is reused across chunks but is not safe for
// concurrent use.
type LzxDecompressor struct {
	maincode_lens    [LZX_MAINCODE_NUM_SYMBOLS]byte
	lencode_lens     [LZX_LENCODE_NUM_SYMBOLS]byte
	precode_lens     [LZX_PRECODE_NUM_SYMBOLS]byte
	alignedcode_lens [LZX_ALIGNEDCODE_NUM_SYMBOLS]byte

	maincode_decode_table    []uint16
	lencode_decode_table     []uint16
	precode_decode_table     []uint16
	alignedcode_decode_table []uint16

	working_space []uint16
}

func NewLzxDecompressor() *LzxDecompressor {
	return &LzxDecompressor{
		maincode_decode_table: make([]uint16, DecodeTableSize(
			LZX_MAINCODE_NUM_SYMBOLS, LZX_MAINCODE_TABLEBITS)),
		lencode_decode_table: make([]uint16, DecodeTableSize(
			LZX_LENCODE_NUM_SYMBOLS, LZX_LENCODE_TABLEBITS)),
		precode_decode_table: make([]uint16, DecodeTableSize(
			LZX_PRECODE_NUM_SYMBOLS, LZX_PRECODE_TABLEBITS)),
		alignedcode_decode_table: make([]uint16, DecodeTableSize(
			LZX_ALIGNEDCODE_NUM_SYMBOLS, LZX_ALIGNEDCODE_TABLEBITS)),
		working_space: make([]uint16, WorkingSpaceSize(
			LZX_MAINCODE_NUM_SYMBOLS, LZX_MAX_MAIN_CODEWORD_LEN)),
	}
}

// read_codeword_lens updates lens, a slice of a carried over length
// vector, by decoding delta lengths with a fresh precode.
func (self *LzxDecompressor) read_codeword_lens(
	is *InputBitstream, lens []byte) error {

	for i := range self.precode_lens {
		self.precode_lens[i] = byte(is.ReadBits(4))
	}

	err := MakeHuffmanDecodeTable(self.precode_decode_table,
		LZX_PRECODE_NUM_SYMBOLS, LZX_PRECODE_TABLEBITS,
		self.precode_lens[:], LZX_MAX_PRE_CODEWORD_LEN,
		self.working_space)
	if err != nil {
		return err
	}

	i := 0
	for i < len(lens) {
		presym := ReadHuffSym(is, self.precode_decode_table,
			LZX_PRECODE_TABLEBITS, LZX_MAX_PRE_CODEWORD_LEN)

		switch {
		case presym <= 16:
			// Difference from the previous block's length.
			lens[i] = byte((uint(lens[i]) + 17 - presym) % 17)
			i++

		case presym == 17:
			run := 4 + int(is.ReadBits(4))
			if i+run > len(lens) {
				return lzxBadRunError
			}
			for j := 0; j < run; j++ {
				lens[i+j] = 0
			}
			i += run

		case presym == 18:
			run := 20 + int(is.ReadBits(5))
			if i+run > len(lens) {
				return lzxBadRunError
			}
			for j := 0; j < run; j++ {
				lens[i+j] = 0
			}
			i += run

		case presym == 19:
			run := 4 + int(is.ReadBits(1))
			if i+run > len(lens) {
				return lzxBadRunError
			}
			presym = ReadHuffSym(is, self.precode_decode_table,
				LZX_PRECODE_TABLEBITS, LZX_MAX_PRE_CODEWORD_LEN)
			if presym > 16 {
				return lzxBadPreSymError
			}
			l := byte((uint(lens[i]) + 17 - presym) % 17)
			for j := 0; j < run; j++ {
				lens[i+j] = l
			}
			i += run

		default:
			return lzxBadPreSymError
		}
	}

	return nil
}

// read_block_header parses the next block header. For compressed
// blocks it also reads the Huffman codes; for uncompressed blocks it
// replaces the recent offsets queue.
func (self *LzxDecompressor) read_block_header(is *InputBitstream,
	recent_offsets []int) (block_type int, block_size int, err error) {

	is.EnsureBits(4)

	block_type = int(is.PopBits(3))

	if is.PopBits(1) != 0 {
		block_size = LZX_DEFAULT_BLOCK_SIZE
	} else {
		block_size = int(is.ReadBits(16))
		block_size = block_size<<8 | int(is.ReadBits(8))
	}

	switch block_type {
	case LZX_BLOCKTYPE_ALIGNED:
		for i := range self.alignedcode_lens {
			self.alignedcode_lens[i] = byte(is.ReadBits(3))
		}
		err = MakeHuffmanDecodeTable(self.alignedcode_decode_table,
			LZX_ALIGNEDCODE_NUM_SYMBOLS, LZX_ALIGNEDCODE_TABLEBITS,
			self.alignedcode_lens[:], LZX_MAX_ALIGNED_CODEWORD_LEN,
			self.working_space)
		if err != nil {
			return 0, 0, err
		}

		// The rest of the header is the same as a verbatim
		// block.
		fallthrough

	case LZX_BLOCKTYPE_VERBATIM:
		// The main code lengths come in two parts: literal
		// symbols, then match symbols.
		err = self.read_codeword_lens(is,
			self.maincode_lens[:LZX_NUM_CHARS])
		if err != nil {
			return 0, 0, err
		}
		err = self.read_codeword_lens(is,
			self.maincode_lens[LZX_NUM_CHARS:])
		if err != nil {
			return 0, 0, err
		}
		err = MakeHuffmanDecodeTable(self.maincode_decode_table,
			LZX_MAINCODE_NUM_SYMBOLS, LZX_MAINCODE_TABLEBITS,
			self.maincode_lens[:], LZX_MAX_MAIN_CODEWORD_LEN,
			self.working_space)
		if err != nil {
			return 0, 0, err
		}

		err = self.read_codeword_lens(is, self.lencode_lens[:])
		if err != nil {
			return 0, 0, err
		}
		err = MakeHuffmanDecodeTable(self.lencode_decode_table,
			LZX_LENCODE_NUM_SYMBOLS, LZX_LENCODE_TABLEBITS,
			self.lencode_lens[:], LZX_MAX_LEN_CODEWORD_LEN,
			self.working_space)
		if err != nil {
			return 0, 0, err
		}

	case LZX_BLOCKTYPE_UNCOMPRESSED:
		// The uncompressed data is byte aligned and preceded
		// by a replacement recent offsets queue.
		is.Align()
		for i := 0; i < LZX_NUM_RECENT_OFFSETS; i++ {
			recent_offsets[i] = int(is.ReadUint32())
			if recent_offsets[i] == 0 {
				return 0, 0, lzxBadRecentError
			}
		}

	default:
		return 0, 0, lzxBadBlockTypeError
	}

	return block_type, block_size, nil
}

// decompress_block decodes the items of one verbatim or aligned
// block into out[out_next:out_next+block_size].
func (self *LzxDecompressor) decompress_block(block_type int,
	block_size int, is *InputBitstream, out []byte, out_next int,
	recent_offsets []int) (int, error) {

	block_end := out_next + block_size

	for out_next < block_end {
		mainsym := ReadHuffSym(is, self.maincode_decode_table,
			LZX_MAINCODE_TABLEBITS, LZX_MAX_MAIN_CODEWORD_LEN)
		if mainsym < LZX_NUM_CHARS {
			// Literal
			out[out_next] = byte(mainsym)
			out_next++
			continue
		}

		// Match
		m := mainsym - LZX_NUM_CHARS
		length_hdr := int(m & 7)
		position_slot := int(m >> 3)

		length := length_hdr + LZX_MIN_MATCH_LEN
		if length_hdr == 7 {
			length += int(ReadHuffSym(is, self.lencode_decode_table,
				LZX_LENCODE_TABLEBITS, LZX_MAX_LEN_CODEWORD_LEN))
		}

		var offset int
		if position_slot < LZX_NUM_RECENT_OFFSETS {
			// Repeat offset - move to front.
			offset = recent_offsets[position_slot]
			recent_offsets[position_slot] = recent_offsets[0]
			recent_offsets[0] = offset
		} else {
			// Explicit offset.
			extra_bits := lzx_extra_offset_bits[position_slot]
			if block_type == LZX_BLOCKTYPE_ALIGNED && extra_bits >= 3 {
				offset = int(is.ReadBits(extra_bits-3)) << 3
				offset += int(ReadHuffSym(is,
					self.alignedcode_decode_table,
					LZX_ALIGNEDCODE_TABLEBITS,
					LZX_MAX_ALIGNED_CODEWORD_LEN))
			} else {
				offset = int(is.ReadBits(extra_bits))
			}
			offset += lzx_position_base[position_slot] -
				LZX_NUM_RECENT_OFFSETS + 1

			recent_offsets[2] = recent_offsets[1]
			recent_offsets[1] = recent_offsets[0]
			recent_offsets[0] = offset
		}

		if offset > out_next {
			return 0, lzxBadOffsetError
		}
		if length > block_end-out_next {
			return 0, lzxBadLengthError
		}

		out_next = lz_copy(out, out_next, length, offset,
			LZX_MIN_MATCH_LEN)
	}

	return out_next, nil
}

// Decompress decodes one LZX compressed chunk into out. The chunk
// must decode to exactly len(out) bytes, at most 32768.
func (self *LzxDecompressor) Decompress(in []byte, out []byte) error {
	STATS.Inc_LzxDecompress()

	if len(out) > LZX_WINDOW_SIZE {
		return fmt.Errorf("%w: chunk larger than LZX window",
			CorruptStreamError)
	}

	is := &InputBitstream{}
	is.Init(in)

	// Codeword lengths begin as all zero and carry over between
	// the blocks of this chunk.
	for i := range self.maincode_lens {
		self.maincode_lens[i] = 0
	}
	for i := range self.lencode_lens {
		self.lencode_lens[i] = 0
	}

	recent_offsets := []int{1, 1, 1}

	out_next := 0
	out_end := len(out)

	for out_next < out_end {
		block_type, block_size, err := self.read_block_header(
			is, recent_offsets)
		if err != nil {
			return fmt.Errorf("%w: %v", CorruptStreamError, err)
		}

		if block_size < 1 || block_size > out_end-out_next {
			return fmt.Errorf("%w: %v", CorruptStreamError,
				lzxBadBlockSizeError)
		}

		if block_type == LZX_BLOCKTYPE_UNCOMPRESSED {
			err = is.ReadBytes(out[out_next:], block_size)
			if err != nil {
				return fmt.Errorf("%w: LZX uncompressed block truncated",
					CorruptStreamError)
			}
			out_next += block_size

			// Odd sized blocks are padded back to a coding
			// unit boundary.
			if block_size%2 == 1 {
				is.ReadByte()
			}
			continue
		}

		out_next, err = self.decompress_block(block_type,
			block_size, is, out, out_next, recent_offsets)
		if err != nil {
			return fmt.Errorf("%w: %v", CorruptStreamError, err)
		}
	}

	return nil
}
