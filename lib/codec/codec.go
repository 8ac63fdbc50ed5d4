package codec

import (
	"encoding/base64"
	"errors"
)

// ErrBadEncoding is returned by Decode for any malformed token
var ErrBadEncoding = errors.New("codec: malformed base64 token")

const (
	groupSize = 4
	padChar   = '='
)

// alphabet maps every byte to its 6 bit value, or -1 if the byte is not part of the alphabet
var alphabet = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	for i := 0; i < len(chars); i++ {
		t[chars[i]] = int8(i)
	}
	return t
}()

// --------------------------------------------------------------------------
// Public API
// --------------------------------------------------------------------------

// Encode returns the padded base64 representation of b.
// An empty input yields an empty token.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// EncodedLen returns the length of the token Encode would produce for n bytes
func EncodedLen(n int) int {
	return base64.StdEncoding.EncodedLen(n)
}

// Decode validates s and returns the decoded bytes.
// It returns ErrBadEncoding if s is not a well-formed padded token.
func Decode(s string) ([]byte, error) {
	n, err := validate(s)
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	// trailing unused bits are ignored, the token shape was checked above
	written, err := base64.StdEncoding.Decode(out, []byte(s))
	if err != nil || written != n {
		return nil, ErrBadEncoding
	}
	return out, nil
}

// DecodedLen returns the exact number of bytes s decodes to.
// It returns ErrBadEncoding if s is malformed.
func DecodedLen(s string) (int, error) {
	return validate(s)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// validate checks the token shape and returns the decoded length.
// encoding/base64 silently skips '\r' and '\n', so the alphabet is checked here first.
func validate(s string) (int, error) {
	if len(s)%groupSize != 0 {
		return 0, ErrBadEncoding
	}
	if len(s) == 0 {
		return 0, nil
	}

	pad := 0
	last := len(s) - 1
	switch {
	case s[last] == padChar && s[last-1] == padChar:
		pad = 2
	case s[last] == padChar:
		pad = 1
	}

	for i := 0; i < len(s)-pad; i++ {
		if alphabet[s[i]] < 0 {
			return 0, ErrBadEncoding
		}
	}

	return len(s)/groupSize*3 - pad, nil
}
