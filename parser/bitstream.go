/*
Bit level cursor over a compressed buffer.

Both XPRESS Huffman and LZX store their entropy coded streams in
little endian 16 bit coding units with the bits ordered high to low
within each unit. Literal bytes (extended match lengths, uncompressed
block data) are interleaved with the coding units and are consumed
from the byte cursor directly.

Reads past the end of the buffer yield zero bits. This is part of the
format contract - the final symbols of a valid stream may extend into
the implicit zero padding.
*/

package parser

import (
	"encoding/binary"
)

type InputBitstream struct {
	// Bits that have been read from the input buffer. The bits
	// are left justified - the next bit is always bit 31.
	bitbuf uint32

	// Number of bits currently held in bitbuf.
	bitsleft uint

	data []byte
	pos  int
}

func (self *InputBitstream) Init(data []byte) {
	self.bitbuf = 0
	self.bitsleft = 0
	self.data = data
	self.pos = 0
}

// EnsureBits makes at least num_bits bits available in bitbuf.
// num_bits must be <= 16. If fewer than 2 input bytes remain the
// buffer is treated as if zero padded.
func (self *InputBitstream) EnsureBits(num_bits uint) {
	if self.bitsleft < num_bits {
		if self.pos+2 <= len(self.data) {
			self.bitbuf |= uint32(
				binary.LittleEndian.Uint16(self.data[self.pos:])) <<
				(16 - self.bitsleft)
			self.pos += 2
		}
		self.bitsleft += 16
	}
}

// PeekBits returns the next num_bits bits without removing them. The
// bits must be available from a previous call to EnsureBits.
func (self *InputBitstream) PeekBits(num_bits uint) uint {
	if num_bits == 0 {
		return 0
	}
	return uint(self.bitbuf >> (32 - num_bits))
}

// RemoveBits drops num_bits bits from bitbuf.
func (self *InputBitstream) RemoveBits(num_bits uint) {
	self.bitbuf <<= num_bits
	self.bitsleft -= num_bits
}

func (self *InputBitstream) PopBits(num_bits uint) uint {
	bits := self.PeekBits(num_bits)
	self.RemoveBits(num_bits)
	return bits
}

func (self *InputBitstream) ReadBits(num_bits uint) uint {
	self.EnsureBits(num_bits)
	return self.PopBits(num_bits)
}

// ReadByte consumes the next literal byte at the byte cursor.
func (self *InputBitstream) ReadByte() byte {
	if self.pos >= len(self.data) {
		return 0
	}
	b := self.data[self.pos]
	self.pos++
	return b
}

func (self *InputBitstream) ReadUint16() uint16 {
	if self.pos+2 > len(self.data) {
		return 0
	}
	v := binary.LittleEndian.Uint16(self.data[self.pos:])
	self.pos += 2
	return v
}

func (self *InputBitstream) ReadUint32() uint32 {
	if self.pos+4 > len(self.data) {
		return 0
	}
	v := binary.LittleEndian.Uint32(self.data[self.pos:])
	self.pos += 4
	return v
}

// ReadBytes bulk copies count literal bytes into dst. Unlike the
// single byte reads this fails when the input is exhausted.
func (self *InputBitstream) ReadBytes(dst []byte, count int) error {
	if len(self.data)-self.pos < count {
		return CorruptStreamError
	}
	copy(dst[:count], self.data[self.pos:])
	self.pos += count
	return nil
}

// Align discards any buffered bits, re-aligning the stream on a
// coding unit boundary. The byte cursor is not moved.
func (self *InputBitstream) Align() {
	self.bitbuf = 0
	self.bitsleft = 0
}
