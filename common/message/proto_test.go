package message

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestStructRoundTrip(t *testing.T) {
	s, err := NewStruct(map[string]any{
		"loaded_tiles": uint32(3),
		"regions": []any{
			map[string]any{"id": uint32(1), "tiles": 2},
		},
	})
	require.NoError(t, err)

	data, err := Encode(s)
	require.NoError(t, err)

	var got structpb.Struct
	require.NoError(t, Decode(data, &got))
	require.Equal(t, float64(3), got.Fields["loaded_tiles"].GetNumberValue())
	region := got.Fields["regions"].GetListValue().Values[0].GetStructValue()
	require.Equal(t, float64(1), region.Fields["id"].GetNumberValue())
	require.Equal(t, float64(2), region.Fields["tiles"].GetNumberValue())
}

func TestDecodeGarbage(t *testing.T) {
	var got structpb.Struct
	require.Error(t, Decode([]byte{0xff, 0xff, 0xff}, &got))
}

func TestNewStructRejectsUnsupported(t *testing.T) {
	_, err := NewStruct(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}
