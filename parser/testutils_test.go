package parser

import (
	"encoding/binary"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
)

// The reference streams under testdata were produced by an
// out-of-tree implementation of the same wire formats and verified
// against a naive decoder. The generators below reproduce the
// corresponding plaintexts.

const testParagraph = "The Windows Overlay Filter stores the compressed " +
	"payload of a system compressed file out of band, in an alternate " +
	"data stream named WofCompressedData. The main stream keeps its " +
	"logical size but allocates no clusters; every read is redirected " +
	"through the filter, which locates the chunk that covers the " +
	"requested range, decompresses it, and copies out the slice the " +
	"caller asked for. "

func textContent(n int) []byte {
	reps := n/len(testParagraph) + 1
	return []byte(strings.Repeat(testParagraph, reps))[:n]
}

func lcgContent(seed int64, n int) []byte {
	x := seed
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		x = (x*1103515245 + 12345) & 0x7FFFFFFF
		out[i] = byte(x >> 16)
	}
	return out
}

func loadTestData(t *testing.T, name string) []byte {
	t.Helper()
	data, err := ioutil.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Can not read %v: %v", name, err)
	}
	return data
}

// bitWriter packs MSB-first bits into little endian 16 bit coding
// units, matching what InputBitstream consumes.
type bitWriter struct {
	out   []byte
	hold  uint32
	nbits uint
}

func (self *bitWriter) writeBits(val uint, n uint) {
	self.hold = self.hold<<n | uint32(val)
	self.nbits += n
	for self.nbits >= 16 {
		unit := uint16(self.hold >> (self.nbits - 16))
		self.out = append(self.out, byte(unit), byte(unit>>8))
		self.nbits -= 16
		self.hold &= 1<<self.nbits - 1
	}
}

func (self *bitWriter) bytes() []byte {
	if self.nbits > 0 {
		unit := uint16(self.hold << (16 - self.nbits))
		self.out = append(self.out, byte(unit), byte(unit>>8))
		self.nbits = 0
		self.hold = 0
	}
	return self.out
}

// canonicalCodes assigns codewords by (length, symbol) order - the
// reference for what MakeHuffmanDecodeTable must agree with.
func canonicalCodes(lens []byte) map[uint]struct {
	code uint
	len  uint
} {
	codes := make(map[uint]struct {
		code uint
		len  uint
	})
	code := uint(0)
	prev := uint(0)
	for l := uint(1); l <= 16; l++ {
		for sym := uint(0); sym < uint(len(lens)); sym++ {
			if uint(lens[sym]) != l {
				continue
			}
			if prev != 0 {
				code = (code + 1) << (l - prev)
			}
			codes[sym] = struct {
				code uint
				len  uint
			}{code, l}
			prev = l
		}
	}
	return codes
}

// naiveDecode reads one symbol bit by bit using the canonical code
// assignment directly.
func naiveDecode(t *testing.T, is *InputBitstream, lens []byte,
	max_codeword_len uint) uint {
	t.Helper()

	inv := make(map[uint64]uint)
	for sym, c := range canonicalCodes(lens) {
		inv[uint64(c.len)<<32|uint64(c.code)] = sym
	}

	is.EnsureBits(max_codeword_len)
	code := uint(0)
	for l := uint(1); l <= max_codeword_len; l++ {
		code = code<<1 | is.PopBits(1)
		sym, pres := inv[uint64(l)<<32|uint64(code)]
		if pres {
			return sym
		}
	}
	t.Fatalf("Naive decode failed")
	return 0
}

func putUint32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}
