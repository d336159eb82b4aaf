// Package rng implements the seeded random stream used for map generation
// and loot rolls.
//
// Stream is a plain value: every draw returns the advanced stream alongside
// the result and never mutates the receiver. Two streams with equal words
// produce identical sequences forever, which is what makes replays exact.
package rng

import "errors"

// ErrEmptyPick is returned by PickOne when asked to choose from nothing.
// It always indicates broken static data.
var ErrEmptyPick = errors.New("rng: cannot pick from an empty list")

// Stream is the four-word generator state.
type Stream struct {
	A uint32 `json:"a"`
	B uint32 `json:"b"`
	C uint32 `json:"c"`
	D uint32 `json:"d"`
}

func splitMix32(seed uint32) uint32 {
	t := seed + 0x9e3779b9
	t = (t ^ (t >> 16)) * 0x21f0aaad
	t = (t ^ (t >> 15)) * 0x735a2d97
	return t ^ (t >> 15)
}

// New derives a stream from a seed. Only the low 32 bits of the seed matter.
func New(seed int64) Stream {
	a := splitMix32(uint32(seed))
	b := splitMix32(a)
	c := splitMix32(b)
	d := splitMix32(c)
	return Stream{A: a, B: b, C: c, D: d}
}

// Next returns a uniform value in [0, 1) and the advanced stream.
func (s Stream) Next() (float64, Stream) {
	t := s.A + s.B
	s.A = s.B ^ (s.B >> 9)
	s.B = s.C + (s.C << 3)
	s.C = (s.C << 21) | (s.C >> 11)
	s.D++
	res := t + s.D
	s.C += res
	return float64(res) / (1 << 32), s
}

// Int returns a uniform integer in [min, max] and the advanced stream.
func (s Stream) Int(min, max int) (int, Stream) {
	v, next := s.Next()
	span := max - min + 1
	return int(v*float64(span)) + min, next
}

// PickOne returns a uniformly chosen element of items and the advanced stream.
func PickOne[T any](s Stream, items []T) (T, Stream, error) {
	if len(items) == 0 {
		var zero T
		return zero, s, ErrEmptyPick
	}
	i, next := s.Int(0, len(items)-1)
	return items[i], next, nil
}
