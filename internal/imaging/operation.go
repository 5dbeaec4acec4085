package imaging

import (
	"fmt"
	"strconv"
	"strings"
)

// OpKind identifies a transformation.
type OpKind int

const (
	OpRotateLeft OpKind = iota + 1
	OpRotateRight
	OpMirrorHorizontal
	OpMirrorVertical
	OpCropCenter
	OpCrop
)

// literals maps every accepted literal to its kind. "mirror" is an alias of
// "mirror_horizontal".
var literals = map[string]OpKind{
	"rotate_left":       OpRotateLeft,
	"rotate_right":      OpRotateRight,
	"mirror":            OpMirrorHorizontal,
	"mirror_horizontal": OpMirrorHorizontal,
	"mirror_vertical":   OpMirrorVertical,
	"crop_center":       OpCropCenter,
}

var kindNames = map[OpKind]string{
	OpRotateLeft:       "rotate_left",
	OpRotateRight:      "rotate_right",
	OpMirrorHorizontal: "mirror_horizontal",
	OpMirrorVertical:   "mirror_vertical",
	OpCropCenter:       "crop_center",
	OpCrop:             "crop",
}

func (k OpKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Operation is a parsed transformation. X, Y, W and H are only meaningful for
// OpCrop and hold the values as written, before clamping.
type Operation struct {
	Kind       OpKind
	X, Y, W, H int
}

// String renders the operation back into the grammar accepted by
// ParseOperation.
func (o Operation) String() string {
	if o.Kind == OpCrop {
		return fmt.Sprintf("crop:%d,%d,%d,%d", o.X, o.Y, o.W, o.H)
	}
	return o.Kind.String()
}

// Operations lists the literal operation names in a stable order, followed
// by the parametrized crop form.
func Operations() []string {
	return []string{
		"rotate_left",
		"rotate_right",
		"mirror",
		"mirror_horizontal",
		"mirror_vertical",
		"crop_center",
		"crop:<x>,<y>,<w>,<h>",
	}
}

// ParseOperation parses an operation string. Matching is case-insensitive and
// ignores surrounding whitespace.
//
// # Errors
//
// Returns an *OperationError (matching ErrInvalidOperation) when the name is
// unknown, when a crop does not carry exactly four parameters, or when a
// parameter is not an integer.
func ParseOperation(spec string) (Operation, error) {
	normalized := strings.ToLower(strings.TrimSpace(spec))

	if name, params, ok := strings.Cut(normalized, ":"); ok {
		if strings.TrimSpace(name) != "crop" {
			return Operation{}, &OperationError{Spec: spec, Reason: fmt.Sprintf("unknown operation %q", strings.TrimSpace(name))}
		}
		return parseCrop(spec, params)
	}

	kind, ok := literals[normalized]
	if !ok {
		return Operation{}, &OperationError{Spec: spec, Reason: fmt.Sprintf("unknown operation %q", normalized)}
	}
	return Operation{Kind: kind}, nil
}

func parseCrop(spec, params string) (Operation, error) {
	tokens := strings.Split(params, ",")
	if len(tokens) != 4 {
		return Operation{}, &OperationError{
			Spec:   spec,
			Reason: fmt.Sprintf("crop expects 4 comma-separated integers, got %d", len(tokens)),
		}
	}

	var values [4]int
	for i, tok := range tokens {
		v, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return Operation{}, &OperationError{
				Spec:   spec,
				Reason: fmt.Sprintf("crop parameter %d is not an integer: %q", i+1, strings.TrimSpace(tok)),
			}
		}
		values[i] = v
	}

	return Operation{Kind: OpCrop, X: values[0], Y: values[1], W: values[2], H: values[3]}, nil
}
