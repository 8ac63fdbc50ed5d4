package server

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dMem/lib/codec"
	"github.com/ValentinKolb/dMem/lib/registry"
	"github.com/ValentinKolb/dMem/rpc/common"
)

// NewRegistryServerAdapter creates the dispatcher for the buffer commands.
// maxListBytes limits the LIST payload (0 = no limit).
func NewRegistryServerAdapter(maxListBytes int) IRPCServerAdapter {
	return &registryAdapterImpl{maxListBytes: maxListBytes}
}

type registryAdapterImpl struct {
	maxListBytes int
}

func (a *registryAdapterImpl) Handle(req common.Request, reg registry.IRegistry) *common.Response {
	if reg == nil {
		return common.NewErrorResponse("registry unavailable")
	}

	switch {
	case req.Cmd == "":
		return common.NewErrorResponse(common.ErrTokenEmpty)
	case !req.Cmd.Known():
		return common.NewErrorResponse(common.ErrTokenUnknownCommand)
	case !req.HasArgs():
		return common.NewUsageResponse(req.Cmd)
	}

	switch req.Cmd {
	case common.CmdAlloc:
		return a.alloc(req, reg)
	case common.CmdWrite:
		return a.write(req, reg)
	case common.CmdRead:
		return a.read(req, reg)
	case common.CmdFree:
		return errorResponse(reg.Remove(req.Args[0]))
	case common.CmdList:
		return a.list(reg)
	case common.CmdExit:
		return common.NewOKResponse(common.ByeMessage)
	default:
		return common.NewErrorResponse(common.ErrTokenUnknownCommand)
	}
}

// --------------------------------------------------------------------------
// Command Handlers
// --------------------------------------------------------------------------

// alloc handles ALLOC <name> <size>
func (a *registryAdapterImpl) alloc(req common.Request, reg registry.IRegistry) *common.Response {
	name, size := req.Args[0], common.ParseNumber(req.Args[1])
	return errorResponse(reg.Create(name, size))
}

// write handles WRITE <name> <offset> <payload>.
// The checks run in protocol order: unknown name, then payload, then range.
func (a *registryAdapterImpl) write(req common.Request, reg registry.IRegistry) *common.Response {
	name, offset := req.Args[0], common.ParseNumber(req.Args[1])

	if _, ok := reg.Find(name); !ok {
		return errorResponse(registry.ErrNotFound)
	}

	data, err := codec.Decode(req.Args[2])
	if err != nil {
		return common.NewErrorResponse(common.ErrTokenBadBase64)
	}

	return errorResponse(reg.WriteAt(name, offset, data))
}

// read handles READ <name> <offset> <length>
func (a *registryAdapterImpl) read(req common.Request, reg registry.IRegistry) *common.Response {
	name := req.Args[0]
	offset, length := common.ParseNumber(req.Args[1]), common.ParseNumber(req.Args[2])

	data, err := reg.ReadAt(name, offset, length)
	if err != nil {
		return errorResponse(err)
	}
	return common.NewOKResponse(codec.Encode(data))
}

// list handles LIST. Entries are joined as name:size pairs separated by ';'.
// Entries that would push the payload over maxListBytes are left out as a whole.
func (a *registryAdapterImpl) list(reg registry.IRegistry) *common.Response {
	entries := reg.List()

	var sb strings.Builder
	for i, e := range entries {
		item := e.Name + ":" + strconv.FormatUint(e.Size, 10)

		needed := len(item)
		if sb.Len() > 0 {
			needed++ // separator
		}
		if a.maxListBytes > 0 && sb.Len()+needed > a.maxListBytes {
			Logger.Warningf("LIST truncated: %d of %d entries exceed the %d byte limit", len(entries)-i, len(entries), a.maxListBytes)
			break
		}

		if sb.Len() > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(item)
	}

	return common.NewOKResponse(sb.String())
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// errorResponse converts a registry result into a response.
// Registry errors are reported with the token of their return code.
func errorResponse(err error) *common.Response {
	if err == nil {
		return common.NewOKResponse("")
	}

	var regErr *registry.Error
	if errors.As(err, &regErr) {
		return common.NewErrorResponse(regErr.Code.String())
	}

	Logger.Errorf("unexpected error: %v", err)
	return common.NewErrorResponse(registry.RetCOutOfMemory.String())
}
