package common

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type Vec2 = mgl32.Vec2

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

type IIndex interface {
	~int | ~int8 | ~int16 | ~int32 | ~uint | ~uint8 | ~uint16 | ~uint32
}

// AssertTrue panics on a broken precondition. Only for programmer errors.
func AssertTrue(ok bool, msgAndArgs ...any) {
	if ok {
		return
	}
	if len(msgAndArgs) == 0 {
		panic("assert failed")
	}
	if format, isStr := msgAndArgs[0].(string); isStr {
		panic(fmt.Sprintf("assert failed: "+format, msgAndArgs[1:]...))
	}
	panic(fmt.Sprint(append([]any{"assert failed: "}, msgAndArgs...)...))
}

// Span returns the half-open range [offsets[i], offsets[i+1]).
func Span[T IIndex](offsets []T, i T) (start, end T) {
	return offsets[i], offsets[i+1]
}

func IndexOf[T comparable](s []T, v T) int {
	for i := range s {
		if s[i] == v {
			return i
		}
	}
	return -1
}

func LastIndexOf[T comparable](s []T, v T) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == v {
			return i
		}
	}
	return -1
}

func Reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// AppendUnique appends v unless it equals the last element.
func AppendUnique[T comparable](s []T, v T) []T {
	if len(s) > 0 && s[len(s)-1] == v {
		return s
	}
	return append(s, v)
}
