package parser

// lz_copy copies an LZ77 match of the given length from dst-offset to
// dst within out, returning the new output position. The caller must
// have validated offset and length already: the source can not
// underrun the buffer and the destination can not overrun it.
//
// A plain copy() is wrong whenever offset < length - it may read
// destination bytes that have not been written yet. Matches must be
// expanded strictly left to right, which is what makes offset == 1
// run length expansion of the previous byte.
func lz_copy(out []byte, dst int, length int, offset int, min_length int) int {
	if offset == 1 {
		// The common hot path for repeated byte runs.
		b := out[dst-1]
		end := dst + length
		for i := dst; i < end; i++ {
			out[i] = b
		}
		return end
	}

	if offset >= length {
		// Source and destination do not overlap.
		copy(out[dst:dst+length], out[dst-offset:])
		return dst + length
	}

	src := dst - offset

	// Matches are at least min_length long so the first
	// iterations need no loop test.
	if min_length >= 2 {
		out[dst] = out[src]
		dst++
		src++
		length--
	}
	if min_length >= 3 {
		out[dst] = out[src]
		dst++
		src++
		length--
	}
	for {
		out[dst] = out[src]
		dst++
		src++
		length--
		if length == 0 {
			break
		}
	}

	return dst
}
