package common

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type Vec3 = mgl32.Vec3

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// AssertTrue panics when an internal invariant does not hold.
func AssertTrue(ok bool, msgAndArgs ...any) {
	if ok {
		return
	}
	if len(msgAndArgs) == 0 {
		panic("assertion failed")
	}
	if format, isStr := msgAndArgs[0].(string); isStr {
		panic(fmt.Sprintf("assertion failed: "+format, msgAndArgs[1:]...))
	}
	panic(fmt.Sprint(append([]any{"assertion failed: "}, msgAndArgs...)...))
}

// Vec3FromArray converts the on-disk [3]float32 form into a Vec3.
func Vec3FromArray(v [3]float32) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}
