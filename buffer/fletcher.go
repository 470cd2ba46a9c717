package buffer

// fletcherBlock is the number of 16-bit words summed between reductions.
const fletcherBlock = 360

// Fletcher32 computes the Fletcher-32 checksum of p.
//
// The input is read as little-endian 16-bit words; an odd trailing byte is
// treated as a final word with a zero high byte. Both sums start at 0xFFFF
// and are folded back to 16 bits after every block of 360 words and once
// more at the end. The result is sum2<<16 | sum1.
func Fletcher32(p []byte) uint32 {
	sum1, sum2 := uint32(0xFFFF), uint32(0xFFFF)
	words := (len(p) + 1) / 2
	i := 0
	for words > 0 {
		n := min(words, fletcherBlock)
		words -= n
		for ; n > 0; n-- {
			w := uint32(p[i])
			if i+1 < len(p) {
				w |= uint32(p[i+1]) << 8
			}
			i += 2
			sum1 += w
			sum2 += sum1
		}
		sum1 = fold(sum1)
		sum2 = fold(sum2)
	}
	sum1 = fold(sum1)
	sum2 = fold(sum2)
	return sum2<<16 | sum1
}

func fold(v uint32) uint32 {
	return (v & 0xFFFF) + (v >> 16)
}
