package engine

import (
	"regexp"
	"strings"

	"go.bytecodealliance.org/wit"

	apipkg "github.com/blockpeak/mod-sandbox/api"
	"github.com/blockpeak/mod-sandbox/errors"
)

// The contract is declared twice: as WIT text (the language-neutral source
// of truth mod SDKs are generated from) and as flat core signature tables
// the loader validates against. verifyContract derives the flat signatures
// from the WIT text and fails if the two have drifted apart.

type witFuncSig struct {
	params  []apipkg.CoreValType
	results []apipkg.CoreValType
	export  bool
}

// Pattern: [export] name: func(params) -> result;
var witFuncPattern = regexp.MustCompile(`(export\s+)?([a-zA-Z][a-zA-Z0-9-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?;`)

func verifyContract() error {
	funcs, err := parseContractFuncs(apipkg.ContractWIT)
	if err != nil {
		return err
	}

	for _, sig := range apipkg.HostImports {
		parsed, ok := funcs[sig.Name]
		if !ok {
			return errors.ParseFailed("contract", errors.NotFound(errors.PhaseParse, "WIT import", sig.Name))
		}
		if parsed.export {
			return errors.InvalidInput(errors.PhaseParse, "contract function "+sig.Name+" is an export in WIT but an import in the signature table")
		}
		if !equalCore(parsed.params, sig.Params) || !equalCore(parsed.results, sig.Results) {
			return errors.SignatureMismatch(sig.Name, sigString(sig), sigString(apipkg.FuncSig{Params: parsed.params, Results: parsed.results}))
		}
	}

	for _, sig := range apipkg.GuestExports {
		if sig.Name == apipkg.FuncModAlloc {
			// ABI support export, deliberately absent from the WIT world.
			continue
		}
		parsed, ok := funcs[sig.Name]
		if !ok {
			return errors.ParseFailed("contract", errors.NotFound(errors.PhaseParse, "WIT export", sig.Name))
		}
		if !parsed.export {
			return errors.InvalidInput(errors.PhaseParse, "contract function "+sig.Name+" is an import in WIT but an export in the signature table")
		}
		if !equalCore(parsed.params, sig.Params) || !equalCore(parsed.results, sig.Results) {
			return errors.SignatureMismatch(sig.Name, sigString(sig), sigString(apipkg.FuncSig{Params: parsed.params, Results: parsed.results}))
		}
	}

	return nil
}

// parseContractFuncs extracts every function from WIT text and lowers it to
// a flat core signature per the contract's lowering rules.
func parseContractFuncs(witText string) (map[string]witFuncSig, error) {
	funcs := make(map[string]witFuncSig)

	for _, match := range witFuncPattern.FindAllStringSubmatch(witText, -1) {
		isExport := strings.TrimSpace(match[1]) == "export"
		name := match[2]
		paramsStr := strings.TrimSpace(match[3])
		resultStr := strings.TrimSpace(match[4])

		var sig witFuncSig
		sig.export = isExport

		if paramsStr != "" {
			for _, p := range splitTopLevel(paramsStr) {
				typStr := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					typStr = strings.TrimSpace(p[idx+1:])
				}
				flat, err := flattenParam(typStr)
				if err != nil {
					return nil, err
				}
				sig.params = append(sig.params, flat...)
			}
		}

		if resultStr != "" {
			flat, retArea, err := flattenResult(resultStr)
			if err != nil {
				return nil, err
			}
			if retArea {
				sig.params = append(sig.params, apipkg.CoreI32)
			} else {
				sig.results = flat
			}
		}

		funcs[name] = sig
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in contract WIT")
	}

	return funcs, nil
}

// namedParamFlat lowers the contract's named record parameters.
var namedParamFlat = map[string][]apipkg.CoreValType{
	"vec3":      {apipkg.CoreF32, apipkg.CoreF32, apipkg.CoreF32},
	"ivec3":     {apipkg.CoreI32, apipkg.CoreI32, apipkg.CoreI32},
	"transform": {apipkg.CoreI32},
	"block-id":  {apipkg.CoreI32},
}

func flattenParam(typ string) ([]apipkg.CoreValType, error) {
	if flat, ok := namedParamFlat[typ]; ok {
		return flat, nil
	}
	if strings.HasPrefix(typ, "list<") {
		// Guest-to-host lists pass as (ptr, len).
		return []apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreI32}, nil
	}

	t, err := wit.ParseType(typ)
	if err != nil {
		return nil, errors.ParseFailed("WIT param type "+typ, err)
	}
	flat, ok := coreOfWitType(t)
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseParse, "unsupported WIT param type "+typ)
	}
	return flat, nil
}

// flattenResult lowers a result type. retArea reports that the result
// travels through a guest-supplied return-area pointer appended to the
// params instead of core results.
func flattenResult(typ string) (flat []apipkg.CoreValType, retArea bool, err error) {
	switch typ {
	case "f32":
		return []apipkg.CoreValType{apipkg.CoreF32}, false, nil
	case "option<f32>":
		return []apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreF32}, false, nil
	case "option<block-id>":
		return []apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreI32}, false, nil
	}
	// Records, strings, lists, and option<record> all go through a
	// return area.
	return nil, true, nil
}

func coreOfWitType(t wit.Type) ([]apipkg.CoreValType, bool) {
	switch t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return []apipkg.CoreValType{apipkg.CoreI32}, true
	case wit.U64, wit.S64:
		return []apipkg.CoreValType{apipkg.CoreI64}, true
	case wit.F32:
		return []apipkg.CoreValType{apipkg.CoreF32}, true
	case wit.F64:
		return []apipkg.CoreValType{apipkg.CoreF64}, true
	case wit.String:
		return []apipkg.CoreValType{apipkg.CoreI32, apipkg.CoreI32}, true
	}
	return nil, false
}

func equalCore(a, b []apipkg.CoreValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// splitTopLevel splits a comma-separated list, respecting nested angle
// brackets and parens.
func splitTopLevel(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
			current.WriteRune(ch)
		case ')', '>':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}

	return result
}
