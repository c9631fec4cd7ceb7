package dumbws

import "io"

type mask [4]byte

func newMask(r io.Reader) (m mask, err error) {
	_, err = io.ReadFull(r, m[:])
	return m, err
}

// transform XORs b in place. Applying it twice restores the input.
func (m mask) transform(b []byte) {
	for i := range b {
		b[i] ^= m[i%4]
	}
}
