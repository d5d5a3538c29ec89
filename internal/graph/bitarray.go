package graph

// BitArray is a fixed-size bitset packed into 64-bit words.
type BitArray []uint64

func NewBitArray(size int) BitArray {
	return make(BitArray, (size+63)>>6)
}

func (b BitArray) Get(i int) bool {
	return b[i>>6]&(1<<(i&63)) != 0
}

func (b BitArray) Set(i int) {
	b[i>>6] |= 1 << (i & 63)
}

func (b BitArray) Unset(i int) {
	b[i>>6] &^= 1 << (i & 63)
}

func (b BitArray) Clear() {
	clear(b)
}

// Count returns the number of set bits.
func (b BitArray) Count() int {
	n := 0
	for _, w := range b {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}
