package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Operation is one step of a translated edit plan. Kind is drawn from a
// closed set; Params carries the translator's loosely typed arguments and is
// decoded by the executor when the operation runs.
type Operation struct {
	Kind   string         `json:"type"`
	Params map[string]any `json:"params"`
}

// Known operation kinds.
const (
	KindTrim         = "trim"
	KindJumpCuts     = "jump_cuts"
	KindAutoJumpCuts = "auto_jump_cuts"
	KindAddText      = "add_text"
	KindAddMusic     = "add_music"
	KindConcatenate  = "concatenate"
	KindSpeed        = "speed"
	KindResize       = "resize"
	KindAddCTA       = "add_cta"
)

// Kinds returns every recognized operation kind.
func Kinds() []string {
	return []string{
		KindTrim, KindJumpCuts, KindAutoJumpCuts, KindAddText, KindAddMusic,
		KindConcatenate, KindSpeed, KindResize, KindAddCTA,
	}
}

// ErrUnknownOperation indicates an operation kind outside the closed set.
var ErrUnknownOperation = errors.New("unknown operation")

// ErrNotSupportedHere indicates an operation that the single-clip executor
// cannot express.
var ErrNotSupportedHere = errors.New("operation not supported in this pipeline")

// DecodeOperations parses a JSON operation list.
func DecodeOperations(data []byte) ([]Operation, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("empty operation list")
	}
	var ops []Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("decode operations: %w", err)
	}
	return ops, nil
}

// EncodeOperations serializes an operation list for queue persistence.
func EncodeOperations(ops []Operation) (string, error) {
	data, err := json.Marshal(ops)
	if err != nil {
		return "", fmt.Errorf("encode operations: %w", err)
	}
	return string(data), nil
}
