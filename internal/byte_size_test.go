package internal_test

import (
	"testing"

	. "github.com/gbrlsnchs/dumbws/internal"
)

func TestByteSize(t *testing.T) {
	testCases := []struct {
		length int
		header int
	}{
		{0, 6},
		{29, 6},
		{125, 6},
		{126, 8},
		{150, 8},
		{MaxPayloadSize, 8},
	}
	for _, tc := range testCases {
		t.Run("", func(t *testing.T) {
			if want, got := tc.header, HeaderSize(tc.length); want != got {
				t.Errorf("want %d, got %d", want, got)
			}
			if want, got := tc.header+tc.length, ByteSize(make([]byte, tc.length)); want != got {
				t.Errorf("want %d, got %d", want, got)
			}
		})
	}
}
