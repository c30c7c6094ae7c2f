package main

import (
	"reflect"
	"sort"

	"github.com/rawbytedev/partinit"
)

// Person is the record carried by encode and decode.
type Person struct {
	Name string
	Age  uint32
	ID   [2]uint64
}

var (
	personName = partinit.Field(func(p *Person) *string { return &p.Name })
	personAge  = partinit.Field(func(p *Person) *uint32 { return &p.Age })
	personID0  = partinit.MustParse[Person, uint64]("ID.0")
	personID1  = partinit.MustParse[Person, uint64]("ID.1")
)

// Header is pointer-free and can live in a raw byte buffer.
type Header struct {
	Tag   uint16
	Flags uint8
	Vals  [3]uint32
	Sum   uint64
}

type Pair struct {
	A int32
	B bool
}

type Inner struct {
	Value1 uint8
	Value2 Pair
}

// Sample is the value built by bench.
type Sample struct {
	Name  string
	Inner Inner
}

var (
	sampleName    = partinit.Field(func(s *Sample) *string { return &s.Name })
	sampleValue1  = partinit.MustParse[Sample, uint8]("Inner.Value1")
	sampleValue2A = partinit.MustParse[Sample, int32]("Inner.Value2.A")
	sampleValue2B = partinit.MustParse[Sample, bool]("Inner.Value2.B")
)

var demoTypes = map[string]reflect.Type{
	"person": reflect.TypeFor[Person](),
	"header": reflect.TypeFor[Header](),
	"sample": reflect.TypeFor[Sample](),
}

func demoNames() []string {
	names := make([]string, 0, len(demoTypes))
	for n := range demoTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
