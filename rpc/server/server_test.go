package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/ValentinKolb/dMem/rpc/transport/tcp"
	"github.com/stretchr/testify/require"
)

// startTestServer runs a server on a random local port
func startTestServer(t *testing.T, config common.ServerConfig) (*RPCServer, string) {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewRPCServer(config, tcp.NewTCPServerTransport())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return s, listener.Addr().String()
}

// lineConn is a raw protocol connection
type lineConn struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dialLine(t *testing.T, addr string) *lineConn {
	t.Helper()
	conn, err := net.Dial("tcp4", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &lineConn{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (c *lineConn) send(line string) string {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err := io.WriteString(c.conn, line+"\n")
	require.NoError(c.t, err)
	resp, err := c.reader.ReadString('\n')
	require.NoError(c.t, err)
	require.True(c.t, strings.HasSuffix(resp, "\n"))
	require.False(c.t, strings.HasSuffix(resp, "\r\n"), "responses must not contain \\r")
	return strings.TrimSuffix(resp, "\n")
}

// TestWireScenario tests the documented scenarios byte for byte over TCP
func TestWireScenario(t *testing.T) {
	_, addr := startTestServer(t, common.DefaultServerConfig())
	c := dialLine(t, addr)

	require.Equal(t, "OK", c.send("ALLOC foo 10"))
	require.Equal(t, "OK", c.send("WRITE foo 0 aGVsbG8="))
	require.Equal(t, "OK aGVsbG8=", c.send("READ foo 0 5"))
	require.Equal(t, "OK", c.send("FREE foo"))
	require.Equal(t, "ERR not_found", c.send("READ foo 0 5"))

	require.Equal(t, "OK", c.send("ALLOC bar 4"))
	require.Equal(t, "ERR out_of_bounds", c.send("READ bar 0 5"))
	require.Equal(t, "ERR unknown_command", c.send("FOO"))
	require.Equal(t, "OK bar:4", c.send("LIST"))
}

// TestExitKeepsConnectionOpen tests that EXIT is answered but the server keeps reading
func TestExitKeepsConnectionOpen(t *testing.T) {
	_, addr := startTestServer(t, common.DefaultServerConfig())
	c := dialLine(t, addr)

	require.Equal(t, "OK bye", c.send("EXIT"))
	require.Equal(t, "OK", c.send("ALLOC after-exit 1"))
	require.Equal(t, "OK after-exit:1", c.send("LIST"))
}

// TestCRLFClients tests that a trailing '\r' is treated as whitespace
func TestCRLFClients(t *testing.T) {
	_, addr := startTestServer(t, common.DefaultServerConfig())
	c := dialLine(t, addr)

	require.Equal(t, "OK", c.send("ALLOC foo 3\r"))
	require.Equal(t, "OK foo:3", c.send("LIST\r"))
}

// TestRegistryOutlivesSessions tests that entries survive reconnects within one process
func TestRegistryOutlivesSessions(t *testing.T) {
	s, addr := startTestServer(t, common.DefaultServerConfig())

	first := dialLine(t, addr)
	require.Equal(t, "OK", first.send("ALLOC keep 2"))
	require.Equal(t, "OK", first.send("WRITE keep 0 q80="))
	first.conn.Close()

	second := dialLine(t, addr)
	require.Equal(t, "OK q80=", second.send("READ keep 0 2"))
	require.Equal(t, 1, s.Registry().Info().Entries)
}

// TestLargePayload tests a READ response far bigger than the reference line buffer
func TestLargePayload(t *testing.T) {
	_, addr := startTestServer(t, common.DefaultServerConfig())
	c := dialLine(t, addr)

	const size = 1 << 20
	require.Equal(t, "OK", c.send(fmt.Sprintf("ALLOC big %d", size)))

	resp := c.send(fmt.Sprintf("READ big 0 %d", size))
	require.True(t, strings.HasPrefix(resp, "OK "))
	require.Len(t, resp, len("OK ")+(size+2)/3*4)
}

// TestListTruncatedAtLineLimit tests that LIST never exceeds the configured line size
func TestListTruncatedAtLineLimit(t *testing.T) {
	config := common.DefaultServerConfig()
	config.Transport.MaxLineBytes = 64
	_, addr := startTestServer(t, config)
	c := dialLine(t, addr)

	for i := 0; i < 20; i++ {
		require.Equal(t, "OK", c.send(fmt.Sprintf("ALLOC entry%02d 1", i)))
	}

	resp := c.send("LIST")
	require.LessOrEqual(t, len(resp), 64)
	require.True(t, strings.HasPrefix(resp, "OK entry19:1;entry18:1"))
	for _, item := range strings.Split(strings.TrimPrefix(resp, "OK "), ";") {
		require.Regexp(t, `^entry\d\d:1$`, item)
	}
}

// TestMetrics tests the per-command counters and the prometheus output
func TestMetrics(t *testing.T) {
	s, addr := startTestServer(t, common.DefaultServerConfig())
	c := dialLine(t, addr)

	c.send("ALLOC m 8")
	c.send("ALLOC m 8")
	c.send("NOPE")

	require.Equal(t, uint64(1), s.metrics.commandCount(common.CmdAlloc, "ok"))
	require.Equal(t, uint64(1), s.metrics.commandCount(common.CmdAlloc, "already_exists"))
	require.Equal(t, uint64(1), s.metrics.commandCount("NOPE", "unknown_command"))

	var sb strings.Builder
	s.metrics.WritePrometheus(&sb)
	require.Contains(t, sb.String(), `dmem_registry_entries 1`)
	require.Contains(t, sb.String(), `dmem_registry_bytes 8`)
	require.Contains(t, sb.String(), `dmem_commands_total{command="ALLOC",result="already_exists"} 1`)
}

// TestMetricsEndpoint tests the optional prometheus HTTP endpoint
func TestMetricsEndpoint(t *testing.T) {
	probe, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	metricsAddr := probe.Addr().String()
	require.NoError(t, probe.Close())

	config := common.DefaultServerConfig()
	config.MetricsEndpoint = metricsAddr
	_, addr := startTestServer(t, config)
	require.Equal(t, "OK", dialLine(t, addr).send("ALLOC x 1"))

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + metricsAddr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		body = string(b)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
	require.Contains(t, body, "dmem_registry_entries 1")
}

// TestServeBindFailure tests that an unusable endpoint is reported as error
func TestServeBindFailure(t *testing.T) {
	taken, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	config := common.DefaultServerConfig()
	config.Transport.Endpoint = taken.Addr().String()

	s := NewRPCServer(config, tcp.NewTCPServerTransport())
	require.Error(t, s.Serve(context.Background()))
}
