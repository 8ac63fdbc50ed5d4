// Package codec implements the binary transport codec used by the dMem line protocol.
// Buffer contents travel inside a single whitespace-free protocol token, so they are
// encoded with the standard base64 alphabet and '=' padding (4-character groups).
//
// Decoding is strict about the shape of the token:
//   - the length must be a multiple of 4
//   - every character must be part of the alphabet, except for '=' padding
//   - padding may only occupy the last one or two positions of the token
//
// Any violation yields ErrBadEncoding. Decode always produces a fresh slice, so a
// failed decode can never leave a destination buffer partially written.
//
// Usage:
//
//	token := codec.Encode([]byte("hello")) // "aGVsbG8="
//	data, err := codec.Decode(token)
package codec
