package server

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ValentinKolb/dMem/lib/codec"
	"github.com/ValentinKolb/dMem/lib/registry"
	"github.com/ValentinKolb/dMem/rpc/common"
)

// exchange is one request line and the expected response line
type exchange struct {
	req  string
	resp string
}

// runExchanges feeds all requests to one adapter/registry pair and checks the responses
func runExchanges(t *testing.T, adapter IRPCServerAdapter, reg registry.IRegistry, exchanges []exchange) {
	t.Helper()
	for i, ex := range exchanges {
		got := adapter.Handle(common.ParseRequest(ex.req), reg).String()
		if got != ex.resp {
			t.Errorf("step %d: %q -> %q, want %q", i, ex.req, got, ex.resp)
		}
	}
}

func newTestAdapter() (IRPCServerAdapter, registry.IRegistry) {
	return NewRegistryServerAdapter(0), registry.NewRegistry(registry.DefaultConfig())
}

// TestScenarioLifecycle tests allocating, writing, reading and freeing a buffer
func TestScenarioLifecycle(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"ALLOC foo 10", "OK"},
		{"WRITE foo 0 aGVsbG8=", "OK"},
		{"READ foo 0 5", "OK aGVsbG8="},
		{"FREE foo", "OK"},
		{"READ foo 0 5", "ERR not_found"},
	})
}

// TestScenarioOutOfBounds tests reading past the end of a buffer
func TestScenarioOutOfBounds(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"ALLOC bar 4", "OK"},
		{"READ bar 0 5", "ERR out_of_bounds"},
	})
}

// TestUnknownAndUsage tests unknown commands, missing arguments and blank lines
func TestUnknownAndUsage(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"FOO", "ERR unknown_command"},
		{"alloc foo 1", "ERR unknown_command"},
		{"", "ERR empty"},
		{"   ", "ERR empty"},
		{"ALLOC", "ERR ALLOC usage"},
		{"ALLOC foo", "ERR ALLOC usage"},
		{"WRITE foo 0", "ERR WRITE usage"},
		{"READ foo 0", "ERR READ usage"},
		{"FREE", "ERR FREE usage"},
		{"EXIT", "OK bye"},
		{"LIST", "OK"},
	})
}

// TestAllocTwice tests that a live name cannot be allocated again, but can after FREE
func TestAllocTwice(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"ALLOC foo 10", "OK"},
		{"ALLOC foo 10", "ERR already_exists"},
		{"FREE foo", "OK"},
		{"FREE foo", "ERR not_found"},
		{"ALLOC foo 10", "OK"},
		{"ALLOC zero 0", "OK"},
		{"READ zero 0 0", "OK"},
		{"LIST", "OK zero:0;foo:10"},
	})
}

// TestWriteErrors tests the error precedence of WRITE
func TestWriteErrors(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"WRITE missing 0 aGVsbG8=", "ERR not_found"},
		{"WRITE missing 0 !!!", "ERR not_found"},
		{"ALLOC buf 4", "OK"},
		{"WRITE buf 0 AAECAw==", "OK"},
		{"WRITE buf 0 aGVsbG8", "ERR bad_base64"},
		{"WRITE buf 0 aG=sbG8=", "ERR bad_base64"},
		{"WRITE buf 0 aGV*bG8=", "ERR bad_base64"},
		{"WRITE buf 999 !!!", "ERR bad_base64"},
		{"WRITE buf 0 aGVsbG8=", "ERR out_of_bounds"},
		{"WRITE buf 3 AAE=", "ERR out_of_bounds"},
		{"WRITE buf 18446744073709551615 AA==", "ERR out_of_bounds"},
		{"READ buf 0 4", "OK AAECAw=="},
	})
}

// TestOverflowingRanges tests offsets and lengths whose fixed width sum wraps around
func TestOverflowingRanges(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"ALLOC buf 8", "OK"},
		{"READ buf 1 18446744073709551615", "ERR out_of_bounds"},
		{"READ buf 18446744073709551615 1", "ERR out_of_bounds"},
		{"READ buf 2 18446744073709551614", "ERR out_of_bounds"},
		{"READ buf -1 2", "ERR out_of_bounds"},
		{"WRITE buf -1 AAE=", "ERR out_of_bounds"},
	})
}

// TestPermissiveNumbers tests that malformed numbers are read as their digit prefix or zero
func TestPermissiveNumbers(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"ALLOC a abc", "OK"},
		{"ALLOC b 3xyz", "OK"},
		{"READ b x 3", "OK AAAA"},
		{"LIST", "OK b:3;a:0"},
	})
}

// TestRoundTripProperty tests that every in-bounds write can be read back exactly
func TestRoundTripProperty(t *testing.T) {
	adapter, reg := newTestAdapter()
	const size = 12
	runExchanges(t, adapter, reg, []exchange{{fmt.Sprintf("ALLOC p %d", size), "OK"}})

	for offset := 0; offset <= size; offset++ {
		for length := 1; offset+length <= size; length++ {
			data := make([]byte, length)
			for i := range data {
				data[i] = byte(offset*17 + length*3 + i)
			}
			token := codec.Encode(data)
			runExchanges(t, adapter, reg, []exchange{
				{fmt.Sprintf("WRITE p %d %s", offset, token), "OK"},
				{fmt.Sprintf("READ p %d %d", offset, length), "OK " + token},
			})
		}
	}
}

// TestRejectedWritesKeepContents tests that failed writes never change the buffer
func TestRejectedWritesKeepContents(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"ALLOC buf 3", "OK"},
		{"WRITE buf 0 AQID", "OK"},
		{"WRITE buf 1 BAUG", "ERR out_of_bounds"},
		{"WRITE buf 0 BAUG=", "ERR bad_base64"},
		{"WRITE buf 0 BA\x00G", "ERR bad_base64"},
		{"READ buf 0 3", "OK AQID"},
	})
}

// TestListReflectsLiveEntries tests LIST order and that freed entries disappear
func TestListReflectsLiveEntries(t *testing.T) {
	adapter, reg := newTestAdapter()
	runExchanges(t, adapter, reg, []exchange{
		{"ALLOC a 1", "OK"},
		{"ALLOC b 2", "OK"},
		{"ALLOC c 3", "OK"},
		{"LIST", "OK c:3;b:2;a:1"},
		{"FREE b", "OK"},
		{"LIST", "OK c:3;a:1"},
		{"FREE a", "OK"},
		{"FREE c", "OK"},
		{"LIST", "OK"},
	})
}

// TestListLimit tests that LIST leaves out whole entries once the payload limit is reached
func TestListLimit(t *testing.T) {
	reg := registry.NewRegistry(registry.DefaultConfig())
	for i := 0; i < 5; i++ {
		if err := reg.Create(fmt.Sprintf("e%d", i), 10); err != nil {
			t.Fatal(err)
		}
	}

	// every entry is "eN:10" (5 bytes), joined by ';'
	cases := map[int]string{
		0:  "e4:10;e3:10;e2:10;e1:10;e0:10",
		29: "e4:10;e3:10;e2:10;e1:10;e0:10",
		28: "e4:10;e3:10;e2:10;e1:10",
		11: "e4:10;e3:10",
		10: "e4:10",
		4:  "",
	}

	for limit, want := range cases {
		resp := NewRegistryServerAdapter(limit).Handle(common.NewListRequest(), reg)
		if !resp.Ok || resp.Payload != want {
			t.Errorf("limit %d: LIST = %q, want payload %q", limit, resp.String(), want)
		}
		if limit > 0 && len(resp.Payload) > limit {
			t.Errorf("limit %d: payload has %d bytes", limit, len(resp.Payload))
		}
		if strings.HasSuffix(resp.Payload, ";") {
			t.Errorf("limit %d: payload ends with a separator", limit)
		}
	}
}

// TestLimitsReportNomem tests that allocations over the registry limits fail with nomem
func TestLimitsReportNomem(t *testing.T) {
	adapter := NewRegistryServerAdapter(0)
	reg := registry.NewRegistry(registry.Config{MaxAllocBytes: 16})
	runExchanges(t, adapter, reg, []exchange{
		{"ALLOC big 17", "ERR nomem"},
		{"ALLOC huge 18446744073709551615", "ERR nomem"},
		{"ALLOC ok 16", "OK"},
		{"LIST", "OK ok:16"},
	})
}
