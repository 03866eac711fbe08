package feed

import (
	"encoding/json"

	"github.com/klauspost/compress/zstd"

	"github.com/blockpeak/mod-sandbox/errors"
)

// FrameType discriminates channel frames.
type FrameType string

const (
	// FrameData carries an opaque payload for one mod.
	FrameData FrameType = "data"

	// FrameEnable returns a disabled mod to the tick order.
	FrameEnable FrameType = "enable"

	// FrameDisable removes a mod from the tick order.
	FrameDisable FrameType = "disable"
)

// Frame is one channel message. The wire form is the JSON encoding
// compressed with zstd.
type Frame struct {
	Type FrameType `json:"type"`
	Mod  string    `json:"mod"`
	Data []byte    `json:"data,omitempty"`
}

// The encoder and decoder are stateless in EncodeAll/DecodeAll mode and
// safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// EncodeFrame renders f to its wire form.
func EncodeFrame(f Frame) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseChannel, errors.KindInvalidData, err, "encode frame")
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

// DecodeFrame parses a wire frame.
func DecodeFrame(data []byte) (Frame, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return Frame{}, errors.Wrap(errors.PhaseChannel, errors.KindInvalidData, err, "decompress frame")
	}

	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, errors.Wrap(errors.PhaseChannel, errors.KindInvalidData, err, "decode frame")
	}
	switch f.Type {
	case FrameData, FrameEnable, FrameDisable:
	default:
		return Frame{}, errors.InvalidInput(errors.PhaseChannel, "unknown frame type "+string(f.Type))
	}
	if f.Mod == "" {
		return Frame{}, errors.InvalidInput(errors.PhaseChannel, "frame without a mod name")
	}
	return f, nil
}
