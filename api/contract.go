package api

// ContractVersion is the semver of the boundary contract this host
// implements. A host at X.Y.Z satisfies mods built for X.Y.W where W <= Z;
// anything else is rejected at load time.
const ContractVersion = "0.1.0"

// HostNamespace is the import module name guests link their host imports
// against. The contract version is embedded so a module compiled against a
// different contract fails linking instead of misbehaving.
const HostNamespace = "blockpeak:client/host@0.1.0"

// Guest-exported function names. The host is the only caller.
const (
	FuncInitPlugin         = "init-plugin"
	FuncSetUpdateFrequency = "set-update-frequency"
	FuncUpdate             = "update"
	FuncHandleServerData   = "handle-server-data"

	// FuncModAlloc is the ABI support export the host uses to allocate
	// guest memory for inbound lists and strings.
	FuncModAlloc = "mod-alloc"

	// MemoryExport is the linear memory every mod must export.
	MemoryExport = "memory"
)

// Host-imported function names, exposed under HostNamespace.
const (
	FuncLog                = "log"
	FuncDeltaTime          = "delta-time"
	FuncGetPlayerTransform = "get-player-transform"
	FuncSetPlayerTransform = "set-player-transform"
	FuncGetCameraTransform = "get-camera-transform"
	FuncSetCameraTransform = "set-camera-transform"
	FuncKeyboardInput      = "keyboard-input"
	FuncGetBlock           = "get-block"
	FuncGetBlockFriction   = "get-block-friction"
	FuncGetBlockName       = "get-block-name"
	FuncGetBlockAABB       = "get-block-aabb"
	FuncGetModels          = "get-models"
	FuncGetModelAABB       = "get-model-aabb"
)

// CoreValType is a core WASM value type in the contract's flat signatures.
// The contract speaks core types directly so it does not depend on any
// particular embedding library.
type CoreValType byte

const (
	CoreI32 CoreValType = iota
	CoreI64
	CoreF32
	CoreF64
)

func (t CoreValType) String() string {
	switch t {
	case CoreI32:
		return "i32"
	case CoreI64:
		return "i64"
	case CoreF32:
		return "f32"
	case CoreF64:
		return "f64"
	default:
		return "unknown"
	}
}

// FuncSig is the flat core signature of one boundary function.
//
// The lowering from WIT to core types is fixed by the contract:
//
//   - records, lists and strings passed guest-to-host: i32 pointer (+ i32
//     length for lists/strings) into guest memory
//   - records returned host-to-guest: i32 return-area pointer supplied by
//     the guest as the final parameter
//   - lists/strings returned host-to-guest: host allocates via mod-alloc and
//     writes {ptr: u32, len: u32} to the guest-supplied return area
//   - option<f32> returned by the guest: (i32 discriminant, f32 payload)
//   - option<block-id> returned by the host: (i32 discriminant, i32 payload)
type FuncSig struct {
	Name    string
	Params  []CoreValType
	Results []CoreValType
}

// GuestExports lists every export a module must provide, with the exact flat
// signature. A module missing any of these, or exporting one with a
// different signature, fails to load.
var GuestExports = []FuncSig{
	{Name: FuncInitPlugin},
	{Name: FuncSetUpdateFrequency, Results: []CoreValType{CoreI32, CoreF32}},
	{Name: FuncUpdate},
	{Name: FuncHandleServerData, Params: []CoreValType{CoreI32, CoreI32}},
	{Name: FuncModAlloc, Params: []CoreValType{CoreI32, CoreI32}, Results: []CoreValType{CoreI32}},
}

// HostImports lists every function the host exposes under HostNamespace.
var HostImports = []FuncSig{
	{Name: FuncLog, Params: []CoreValType{CoreI32, CoreI32}},
	{Name: FuncDeltaTime, Results: []CoreValType{CoreF32}},
	{Name: FuncGetPlayerTransform, Params: []CoreValType{CoreI32}},
	{Name: FuncSetPlayerTransform, Params: []CoreValType{CoreI32}},
	{Name: FuncGetCameraTransform, Params: []CoreValType{CoreI32}},
	{Name: FuncSetCameraTransform, Params: []CoreValType{CoreI32}},
	{Name: FuncKeyboardInput, Params: []CoreValType{CoreI32}},
	{Name: FuncGetBlock, Params: []CoreValType{CoreI32, CoreI32, CoreI32}, Results: []CoreValType{CoreI32, CoreI32}},
	{Name: FuncGetBlockFriction, Params: []CoreValType{CoreI32, CoreI32}},
	{Name: FuncGetBlockName, Params: []CoreValType{CoreI32, CoreI32}},
	{Name: FuncGetBlockAABB, Params: []CoreValType{CoreI32, CoreI32}},
	{Name: FuncGetModels, Params: []CoreValType{CoreF32, CoreF32, CoreF32, CoreF32, CoreF32, CoreF32, CoreI32}},
	{Name: FuncGetModelAABB, Params: []CoreValType{CoreI32, CoreI32}},
}

// ContractWIT is the canonical WIT description of the contract. It is the
// language-neutral source of truth mod SDKs are generated from; the engine
// cross-checks it against GuestExports and HostImports at startup.
const ContractWIT = `package blockpeak:client@0.1.0;

interface host {
  record vec3 { x: f32, y: f32, z: f32 }
  record ivec3 { x: s32, y: s32, z: s32 }
  record dquat { x: f64, y: f64, z: f64, w: f64 }
  record transform { translation: vec3, rotation: dquat, scale: vec3 }
  record aabb { min: vec3, max: vec3 }
  record surface-friction { front: f32, back: f32, right: f32, left: f32, top: f32, bottom: f32 }
  record friction { surface: option<surface-friction>, drag: vec3 }
  type block-id = u16;
  enum key { key-w, key-a, key-s, key-d, space, shift, control }
  record keyboard-event { key: key, released: bool, repeat: bool }

  log: func(message: string);
  delta-time: func() -> f32;
  get-player-transform: func() -> transform;
  set-player-transform: func(new: transform);
  get-camera-transform: func() -> transform;
  set-camera-transform: func(new: transform);
  keyboard-input: func() -> list<keyboard-event>;
  get-block: func(position: ivec3) -> option<block-id>;
  get-block-friction: func(id: block-id) -> friction;
  get-block-name: func(id: block-id) -> string;
  get-block-aabb: func(id: block-id) -> option<aabb>;
  get-models: func(min: vec3, max: vec3) -> list<u32>;
  get-model-aabb: func(model-id: u32) -> aabb;
}

world plugin {
  import host;

  export init-plugin: func();
  export set-update-frequency: func() -> option<f32>;
  export update: func();
  export handle-server-data: func(data: list<u8>);
}
`
