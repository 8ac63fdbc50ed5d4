package codec

import (
	"bytes"
	"errors"
	"testing"
)

// TestEncode tests the padding for all three input remainders
func TestEncode(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"h":     "aA==",
		"he":    "aGU=",
		"hel":   "aGVs",
		"hello": "aGVsbG8=",
	}

	for in, want := range cases {
		if got := Encode([]byte(in)); got != want {
			t.Errorf("Encode(%q) = %q, want %q", in, got, want)
		}
		if got := EncodedLen(len(in)); got != len(want) {
			t.Errorf("EncodedLen(%d) = %d, want %d", len(in), got, len(want))
		}
	}
}

// TestDecodeValid tests decoding of well-formed tokens with 0, 1 and 2 padding characters
func TestDecodeValid(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"aA==":     "h",
		"aGU=":     "he",
		"aGVs":     "hel",
		"aGVsbG8=": "hello",
	}

	for in, want := range cases {
		got, err := Decode(in)
		if err != nil {
			t.Errorf("Decode(%q) returned error: %v", in, err)
			continue
		}
		if string(got) != want {
			t.Errorf("Decode(%q) = %q, want %q", in, got, want)
		}

		n, err := DecodedLen(in)
		if err != nil || n != len(want) {
			t.Errorf("DecodedLen(%q) = %d, %v, want %d", in, n, err, len(want))
		}
	}
}

// TestDecodeInvalid tests that malformed tokens are rejected
func TestDecodeInvalid(t *testing.T) {
	cases := []string{
		"a",          // length not a multiple of 4
		"aGVsbG8",    // length not a multiple of 4
		"aGV*",       // character outside the alphabet
		"aG=s",       // padding not at the end
		"a===",       // too much padding
		"====",       // only padding
		"aA==aA==",   // padding in the middle of the token
		"aGVs\rbG8=", // control characters are not skipped
		"aGVs\nbG8",  // same for newlines
		"aGVsbG8-",   // url alphabet is not accepted
	}

	for _, in := range cases {
		if _, err := Decode(in); !errors.Is(err, ErrBadEncoding) {
			t.Errorf("Decode(%q) error = %v, want ErrBadEncoding", in, err)
		}
		if _, err := DecodedLen(in); !errors.Is(err, ErrBadEncoding) {
			t.Errorf("DecodedLen(%q) error = %v, want ErrBadEncoding", in, err)
		}
	}
}

// TestRoundTrip tests that every byte value survives encoding and decoding
func TestRoundTrip(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	for n := 0; n <= len(data); n++ {
		token := Encode(data[:n])
		if len(token)%4 != 0 {
			t.Fatalf("token for %d bytes has length %d", n, len(token))
		}
		got, err := Decode(token)
		if err != nil {
			t.Fatalf("Decode of %d bytes failed: %v", n, err)
		}
		if !bytes.Equal(got, data[:n]) {
			t.Fatalf("round trip of %d bytes mismatch", n)
		}
	}
}
