// Package wasmtest assembles minimal WebAssembly binaries for tests.
//
// The builders emit core wasm modules directly as bytes, so tests can
// fabricate guests that conform to (or deliberately violate) the mod
// contract without a guest-language toolchain.
package wasmtest

import (
	"encoding/binary"
	"math"
)

// ValType is a core wasm value type byte.
type ValType byte

const (
	I32 ValType = 0x7F
	I64 ValType = 0x7E
	F32 ValType = 0x7D
	F64 ValType = 0x7C
)

// FuncType is a core function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a function import entry.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a defined function, optionally exported under Name.
type Func struct {
	Name   string
	Type   FuncType
	Locals []ValType
	Body   []byte // instructions without the trailing end opcode
}

// Build assembles a wasm module with one exported memory ("memory", 1
// page), the given imports, and the given functions. Function indices
// follow wasm numbering: imports first, then defined functions in order.
func Build(imports []Import, funcs []Func) []byte {
	var types []FuncType
	typeKeys := make(map[string]uint32)
	typeIdx := func(ft FuncType) uint32 {
		key := string(encodeFuncType(ft))
		if idx, ok := typeKeys[key]; ok {
			return idx
		}
		idx := uint32(len(types))
		types = append(types, ft)
		typeKeys[key] = idx
		return idx
	}

	var importBody []byte
	for _, imp := range imports {
		idx := typeIdx(imp.Type)
		importBody = append(importBody, str(imp.Module)...)
		importBody = append(importBody, str(imp.Name)...)
		importBody = append(importBody, 0x00)
		importBody = append(importBody, uleb(idx)...)
	}

	var funcBody []byte
	for _, fn := range funcs {
		funcBody = append(funcBody, uleb(typeIdx(fn.Type))...)
	}

	var typeBody []byte
	for _, ft := range types {
		typeBody = append(typeBody, encodeFuncType(ft)...)
	}

	memBody := []byte{0x00, 0x01} // limits: min 1 page, no max

	var exportBody []byte
	exportCount := 0
	for i, fn := range funcs {
		if fn.Name == "" {
			continue
		}
		exportBody = append(exportBody, str(fn.Name)...)
		exportBody = append(exportBody, 0x00)
		exportBody = append(exportBody, uleb(uint32(len(imports)+i))...)
		exportCount++
	}
	exportBody = append(exportBody, str("memory")...)
	exportBody = append(exportBody, 0x02, 0x00)
	exportCount++

	var codeBody []byte
	for _, fn := range funcs {
		// Locals are declared one run per local for simplicity.
		body := uleb(uint32(len(fn.Locals)))
		for _, l := range fn.Locals {
			body = append(body, 0x01, byte(l))
		}
		body = append(body, fn.Body...)
		body = append(body, 0x0B) // end
		codeBody = append(codeBody, uleb(uint32(len(body)))...)
		codeBody = append(codeBody, body...)
	}

	mod := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, section(1, vec(len(types), typeBody))...)
	if len(imports) > 0 {
		mod = append(mod, section(2, vec(len(imports), importBody))...)
	}
	mod = append(mod, section(3, vec(len(funcs), funcBody))...)
	mod = append(mod, section(5, vec(1, memBody))...)
	mod = append(mod, section(7, vec(exportCount, exportBody))...)
	mod = append(mod, section(10, vec(len(funcs), codeBody))...)
	return mod
}

func encodeFuncType(ft FuncType) []byte {
	out := []byte{0x60}
	out = append(out, uleb(uint32(len(ft.Params)))...)
	for _, p := range ft.Params {
		out = append(out, byte(p))
	}
	out = append(out, uleb(uint32(len(ft.Results)))...)
	for _, r := range ft.Results {
		out = append(out, byte(r))
	}
	return out
}

func section(id byte, contents []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(contents)))...)
	return append(out, contents...)
}

func vec(count int, contents []byte) []byte {
	return append(uleb(uint32(count)), contents...)
}

func str(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

// Instruction helpers. Each returns the encoded instruction bytes.

func Unreachable() []byte { return []byte{0x00} }

func Nop() []byte { return []byte{0x01} }

func Drop() []byte { return []byte{0x1A} }

func I32Const(v int32) []byte { return append([]byte{0x41}, sleb(v)...) }

func F32Const(v float32) []byte {
	out := make([]byte, 5)
	out[0] = 0x43
	binary.LittleEndian.PutUint32(out[1:], math.Float32bits(v))
	return out
}

func LocalGet(i uint32) []byte { return append([]byte{0x20}, uleb(i)...) }

func LocalSet(i uint32) []byte { return append([]byte{0x21}, uleb(i)...) }

// I32Store stores the top i32 at the address below it, 4-aligned, zero
// offset.
func I32Store() []byte { return []byte{0x36, 0x02, 0x00} }

// I32Load loads an i32 from the address on top of the stack, 4-aligned,
// zero offset.
func I32Load() []byte { return []byte{0x28, 0x02, 0x00} }

func I32Add() []byte { return []byte{0x6A} }

// IncrementI32 bumps the i32 counter stored at addr by one.
func IncrementI32(addr int32) []byte {
	return Seq(
		I32Const(addr),
		I32Const(addr),
		I32Load(),
		I32Const(1),
		I32Add(),
		I32Store(),
	)
}

// F32Store stores the top f32 at the address below it, 4-aligned, zero
// offset.
func F32Store() []byte { return []byte{0x38, 0x02, 0x00} }

func Call(funcIdx uint32) []byte { return append([]byte{0x10}, uleb(funcIdx)...) }

// InfiniteLoop is a body that never returns.
func InfiniteLoop() []byte { return []byte{0x03, 0x40, 0x0C, 0x00, 0x0B} }

// Seq concatenates instruction sequences into one body.
func Seq(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
