package common

import (
	"math"
	"testing"
)

// TestParseRequest tests tokenization of request lines
func TestParseRequest(t *testing.T) {
	cases := []struct {
		line string
		cmd  Command
		args []string
	}{
		{"ALLOC foo 10", CmdAlloc, []string{"foo", "10"}},
		{"  WRITE   foo 0\taGVsbG8=  ", CmdWrite, []string{"foo", "0", "aGVsbG8="}},
		{"LIST\r", CmdList, nil},
		{"alloc foo 10", Command("alloc"), []string{"foo", "10"}},
		{"", "", nil},
		{"   ", "", nil},
	}

	for _, c := range cases {
		req := ParseRequest(c.line)
		if req.Cmd != c.cmd {
			t.Errorf("ParseRequest(%q).Cmd = %q, want %q", c.line, req.Cmd, c.cmd)
		}
		if len(req.Args) != len(c.args) {
			t.Errorf("ParseRequest(%q).Args = %q, want %q", c.line, req.Args, c.args)
			continue
		}
		for i := range c.args {
			if req.Args[i] != c.args[i] {
				t.Errorf("ParseRequest(%q).Args[%d] = %q, want %q", c.line, i, req.Args[i], c.args[i])
			}
		}
	}
}

// TestHasArgs tests the arity check, including ignored extra arguments
func TestHasArgs(t *testing.T) {
	cases := map[string]bool{
		"ALLOC foo":          false,
		"ALLOC foo 10":       true,
		"ALLOC foo 10 extra": true,
		"WRITE foo 0":        false,
		"READ foo 0 5":       true,
		"FREE":               false,
		"FREE foo":           true,
		"LIST":               true,
		"EXIT now":           true,
	}

	for line, want := range cases {
		if got := ParseRequest(line).HasArgs(); got != want {
			t.Errorf("HasArgs(%q) = %v, want %v", line, got, want)
		}
	}

	if Command("FOO").Known() || Command("alloc").Known() {
		t.Error("unknown commands reported as known")
	}
}

// TestRequestFactories tests that factory requests serialize to protocol lines
func TestRequestFactories(t *testing.T) {
	cases := map[string]Request{
		"ALLOC foo 10":         NewAllocRequest("foo", 10),
		"WRITE foo 3 aGVsbG8=": NewWriteRequest("foo", 3, "aGVsbG8="),
		"READ foo 0 5":         NewReadRequest("foo", 0, 5),
		"FREE foo":             NewFreeRequest("foo"),
		"LIST":                 NewListRequest(),
		"EXIT":                 NewExitRequest(),
	}

	for want, req := range cases {
		if got := req.String(); got != want {
			t.Errorf("request serialized to %q, want %q", got, want)
		}
		if parsed := ParseRequest(want); parsed.String() != want {
			t.Errorf("ParseRequest(%q) serialized to %q", want, parsed.String())
		}
	}
}

// TestResponseLines tests serialization and parsing of response lines
func TestResponseLines(t *testing.T) {
	cases := map[string]*Response{
		"OK":                  NewOKResponse(""),
		"OK bye":              NewOKResponse(ByeMessage),
		"OK aGVsbG8=":         NewOKResponse("aGVsbG8="),
		"ERR not_found":       NewErrorResponse("not_found"),
		"ERR ALLOC usage":     NewUsageResponse(CmdAlloc),
		"ERR unknown_command": NewErrorResponse(ErrTokenUnknownCommand),
	}

	for line, resp := range cases {
		if got := resp.String(); got != line {
			t.Errorf("response serialized to %q, want %q", got, line)
		}
		parsed, err := ParseResponse(line)
		if err != nil {
			t.Errorf("ParseResponse(%q) failed: %v", line, err)
			continue
		}
		if *parsed != *resp {
			t.Errorf("ParseResponse(%q) = %+v, want %+v", line, parsed, resp)
		}
	}

	for _, line := range []string{"", "OKAY", "ERR", "hello"} {
		if _, err := ParseResponse(line); err == nil {
			t.Errorf("ParseResponse(%q) did not fail", line)
		}
	}
}

// TestParseNumber tests the permissive number parsing
func TestParseNumber(t *testing.T) {
	cases := map[string]uint64{
		"0":                     0,
		"10":                    10,
		"007":                   7,
		"+5":                    5,
		"12abc":                 12,
		"abc":                   0,
		"":                      0,
		"-":                     0,
		"-1":                    math.MaxUint64,
		"18446744073709551615":  math.MaxUint64,
		"18446744073709551616":  math.MaxUint64,
		"99999999999999999999x": math.MaxUint64,
	}

	for in, want := range cases {
		if got := ParseNumber(in); got != want {
			t.Errorf("ParseNumber(%q) = %d, want %d", in, got, want)
		}
	}
}
