// Package seats generates the booked-seat map shown by the booking demo.
//
// The map is deterministic: the same train, class and date always give the
// same seats. A 32-bit FNV-1a hash of the seed string seeds an xorshift32
// generator; neither is suitable for anything but display.
package seats

import (
	"fmt"
	"sort"
	"unicode/utf16"
)

const (
	DefaultTrain = "0"
	DefaultClass = "GEN"
	DefaultTotal = 72

	// share of seats shown as booked
	bookedRatio = 0.25

	fnvOffset = 2166136261
	fnvPrime  = 16777619
)

// Request identifies one coach layout
type Request struct {
	Train string
	Class string
	Date  string
	Total int
}

// Seed builds the generator seed, filling defaults for missing parts
func (r Request) Seed() string {
	train := r.Train
	if train == "" {
		train = DefaultTrain
	}
	class := r.Class
	if class == "" {
		class = DefaultClass
	}
	return fmt.Sprintf("%s-%s-%s", train, class, r.Date)
}

// Hash is 32-bit FNV-1a over the UTF-16 code units of s
func Hash(s string) uint32 {
	h := uint32(fnvOffset)
	for _, unit := range utf16.Encode([]rune(s)) {
		h ^= uint32(unit)
		h *= fnvPrime
	}
	return h
}

// Generator is an xorshift32 generator yielding values in [0,1) with six
// decimal digits of resolution.
type Generator struct {
	state uint32
}

// NewGenerator seeds a generator from a string. A zero hash is replaced by 1
// since xorshift never leaves the zero state.
func NewGenerator(seed string) *Generator {
	state := Hash(seed)
	if state == 0 {
		state = 1
	}
	return &Generator{state: state}
}

// Next advances the generator
func (g *Generator) Next() float64 {
	g.state ^= g.state << 13
	g.state ^= g.state >> 17
	g.state ^= g.state << 5
	return float64(g.state%1000000) / 1000000
}

// Booked returns the sorted seat numbers shown as booked for the request
func Booked(req Request) []int {
	total := req.Total
	if total <= 0 {
		total = DefaultTotal
	}

	want := int(float64(total) * bookedRatio)
	gen := NewGenerator(req.Seed())
	chosen := make(map[int]struct{}, want)
	for len(chosen) < want {
		chosen[int(gen.Next()*float64(total))+1] = struct{}{}
	}

	seats := make([]int, 0, len(chosen))
	for n := range chosen {
		seats = append(seats, n)
	}
	sort.Ints(seats)
	return seats
}

// BookedIDs is Booked rendered as seat ids "S1".."S72"
func BookedIDs(req Request) []string {
	numbers := Booked(req)
	ids := make([]string, len(numbers))
	for i, n := range numbers {
		ids[i] = SeatID(n)
	}
	return ids
}

// SeatID formats a seat number
func SeatID(n int) string {
	return fmt.Sprintf("S%d", n)
}
