package message

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func Encode(msg proto.Message) ([]byte, error) {
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", msg, err)
	}
	return data, nil
}

func Decode(data []byte, msg proto.Message) error {
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

// NewStruct builds a protobuf Struct from plain Go values. Integer types are
// widened to float64 since structpb only carries numbers as doubles.
func NewStruct(fields map[string]any) (*structpb.Struct, error) {
	normalized := make(map[string]any, len(fields))
	for k, v := range fields {
		normalized[k] = normalize(v)
	}
	return structpb.NewStruct(normalized)
}

func normalize(v any) any {
	switch t := v.(type) {
	case uint32:
		return float64(t)
	case int32:
		return float64(t)
	case uint64:
		return float64(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	default:
		return v
	}
}
