package matchserver

import (
	"encoding/json"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
)

// toStruct converts any JSON-encodable value into a protobuf Struct
func toStruct(v any) (*structpb.Struct, error) {
	m, err := toMap(v)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// submitResponse encodes the outcome of a command. Rejections are carried
// in-band with ok=false and the error category.
func submitResponse(r SubmitResult) (*structpb.Struct, error) {
	snap, err := toMap(r.Snapshot)
	if err != nil {
		return nil, err
	}
	resp := map[string]any{
		"ok":         r.Err == nil,
		"error":      "",
		"error_kind": core.ErrorKind(r.Err),
		"snapshot":   snap,
	}
	if r.Err != nil {
		resp["error"] = r.Err.Error()
	}
	if r.Result.CreatedUnitID != 0 {
		resp["created_unit_id"] = r.Result.CreatedUnitID
	}
	if r.Result.TurnEnded {
		resp["turn_ended"] = true
	}
	return structpb.NewStruct(resp)
}

// commandFromStruct decodes the command field of a SubmitCommand request
func commandFromStruct(s *structpb.Struct) (processor.Command, error) {
	var cmd processor.Command
	if s == nil {
		return cmd, fmt.Errorf("%w: missing command", processor.ErrMalformedCommand)
	}
	data, err := s.MarshalJSON()
	if err != nil {
		return cmd, fmt.Errorf("%w: %v", processor.ErrMalformedCommand, err)
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return cmd, fmt.Errorf("%w: %v", processor.ErrMalformedCommand, err)
	}
	return cmd, nil
}

// requestFields reads typed fields out of a request Struct and collects
// the first decoding error
type requestFields struct {
	s   *structpb.Struct
	err error
}

func fieldsOf(s *structpb.Struct) *requestFields {
	if s == nil {
		s = &structpb.Struct{}
	}
	return &requestFields{s: s}
}

func (f *requestFields) fail(format string, args ...any) {
	if f.err == nil {
		f.err = status.Errorf(codes.InvalidArgument, format, args...)
	}
}

func (f *requestFields) requiredString(name string) string {
	v, ok := f.s.GetFields()[name]
	if !ok || v.GetStringValue() == "" {
		f.fail("%s is required", name)
		return ""
	}
	return v.GetStringValue()
}

func (f *requestFields) optionalString(name string) string {
	return f.s.GetFields()[name].GetStringValue()
}

// number reads a whole number field; missing fields read as def
func (f *requestFields) number(name string, def int64) int64 {
	v, ok := f.s.GetFields()[name]
	if !ok {
		return def
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != math.Trunc(n.NumberValue) {
		f.fail("%s must be a whole number", name)
		return def
	}
	return int64(n.NumberValue)
}

func (f *requestFields) structField(name string) *structpb.Struct {
	return f.s.GetFields()[name].GetStructValue()
}
