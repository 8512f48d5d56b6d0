package bitutil

import "errors"

// ErrBitSourceExhausted is returned when a read asks for more bits than
// remain, or for a count outside [1,32].
var ErrBitSourceExhausted = errors.New("bitutil: not enough bits available")

// BitSource reads big-endian bit fields of arbitrary width from a byte slice.
type BitSource struct {
	data    []byte
	byteOff int
	bitOff  int
}

func NewBitSource(data []byte) *BitSource {
	return &BitSource{data: data}
}

// ByteOffset is the index of the byte holding the next bit.
func (s *BitSource) ByteOffset() int { return s.byteOff }

// BitOffset is the position of the next bit within the current byte.
func (s *BitSource) BitOffset() int { return s.bitOff }

// Available returns the number of unread bits.
func (s *BitSource) Available() int {
	return 8*(len(s.data)-s.byteOff) - s.bitOff
}

// ReadBits consumes n bits and returns them right-aligned.
func (s *BitSource) ReadBits(n int) (int, error) {
	if n < 1 || n > 32 || n > s.Available() {
		return 0, ErrBitSourceExhausted
	}
	result := 0
	for n > 0 {
		left := 8 - s.bitOff
		take := min(n, left)
		shift := left - take
		chunk := int(s.data[s.byteOff]>>uint(shift)) & (1<<uint(take) - 1)
		result = result<<uint(take) | chunk
		n -= take
		s.bitOff += take
		if s.bitOff == 8 {
			s.bitOff = 0
			s.byteOff++
		}
	}
	return result, nil
}
