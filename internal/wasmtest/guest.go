package wasmtest

import (
	"slices"

	"github.com/blockpeak/mod-sandbox/api"
)

// GuestConfig shapes a contract-conforming guest module.
type GuestConfig struct {
	// Freq is the update frequency reported by set-update-frequency.
	// Nil reports none.
	Freq *float32

	// Bodies override the default empty bodies. Instructions only, the
	// end opcode is appended by the builder.
	InitBody   []byte
	UpdateBody []byte
	ServerBody []byte
	AllocBody  []byte

	// UpdateLocals declares locals for the update body.
	UpdateLocals []ValType

	// Omit lists export names to leave out of the module.
	Omit []string

	// Imports are prepended to the module. Bodies can reach them with
	// Call(i) where i is the position in this slice.
	Imports []Import
}

// Guest assembles a guest module implementing the mod contract.
func Guest(cfg GuestConfig) []byte {
	freqBody := Seq(I32Const(0), F32Const(0))
	if cfg.Freq != nil {
		freqBody = Seq(I32Const(1), F32Const(*cfg.Freq))
	}
	allocBody := cfg.AllocBody
	if allocBody == nil {
		allocBody = I32Const(4096)
	}

	all := []Func{
		{Name: api.FuncInitPlugin, Type: FuncType{}, Body: cfg.InitBody},
		{Name: api.FuncSetUpdateFrequency, Type: FuncType{Results: []ValType{I32, F32}}, Body: freqBody},
		{Name: api.FuncUpdate, Type: FuncType{}, Locals: cfg.UpdateLocals, Body: cfg.UpdateBody},
		{Name: api.FuncHandleServerData, Type: FuncType{Params: []ValType{I32, I32}}, Body: cfg.ServerBody},
		{Name: api.FuncModAlloc, Type: FuncType{Params: []ValType{I32, I32}, Results: []ValType{I32}}, Body: allocBody},
	}

	var funcs []Func
	for _, fn := range all {
		if slices.Contains(cfg.Omit, fn.Name) {
			continue
		}
		funcs = append(funcs, fn)
	}

	return Build(cfg.Imports, funcs)
}
