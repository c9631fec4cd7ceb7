package internal

import "io"

const (
	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	keyChars    = 22
	KeySize     = keyChars + 2
)

// GenerateKey returns a Sec-WebSocket-Key shaped nonce: 22 characters from the
// base64 alphabet plus "==" padding. It is not the encoding of 16 random bytes.
func GenerateKey(r io.Reader) (string, error) {
	var b [KeySize]byte
	if _, err := io.ReadFull(r, b[:keyChars]); err != nil {
		return "", err
	}
	for i := 0; i < keyChars; i++ {
		b[i] = keyAlphabet[b[i]&0x3F]
	}
	b[keyChars], b[keyChars+1] = '=', '='
	return string(b[:]), nil
}
