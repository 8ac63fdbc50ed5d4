package server

import (
	"github.com/ValentinKolb/dMem/lib/registry"
	"github.com/ValentinKolb/dMem/rpc/common"
)

// IRPCServerAdapter is the interface for command dispatchers.
// It executes one parsed request against a registry and builds the response.
// Failures are reported in the response, never as a Go error.
type IRPCServerAdapter interface {
	Handle(req common.Request, reg registry.IRegistry) (resp *common.Response)
}
