package schema_test

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/ssargent/gdsstream/pkg/codec"
	"github.com/ssargent/gdsstream/pkg/grammar"
	"github.com/ssargent/gdsstream/pkg/schema"
)

// Example builds the classic "hello" library: one structure spelling HELLO
// with boundaries, and a top structure placing it four times, rotated.
func Example() {
	now := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	lib := schema.NewLibrary("HELLO.DB", schema.DefaultUserUnits, schema.DefaultDBUnits, now)

	hello := schema.NewStructure("hello", now)
	for _, xy := range [][]int32{
		{0, 0, 0, 700, 100, 700, 100, 400, 300, 400, 300, 700, 400, 700, 400, 0, 300, 0, 300, 300, 100, 300, 100, 0, 0, 0},
		{600, 0, 600, 700, 900, 700, 900, 600, 700, 600, 700, 400, 900, 400, 900, 300, 700, 300, 700, 100, 900, 100, 900, 0, 600, 0},
		{1100, 0, 1100, 700, 1200, 700, 1200, 100, 1400, 100, 1400, 0, 1100, 0},
		{1600, 0, 1600, 700, 1700, 700, 1700, 100, 1900, 100, 1900, 0, 1600, 0},
		{2100, 200, 2100, 600, 2200, 700, 2500, 700, 2600, 600, 2600, 100, 2500, 0, 2200, 0, 2100, 100, 2100, 200,
			2200, 200, 2300, 100, 2400, 100, 2500, 200, 2500, 500, 2400, 600, 2300, 600, 2200, 500, 2200, 200, 2100, 200},
	} {
		schema.AddElement(hello, schema.NewBoundary(1, 0, xy))
	}
	schema.AddStructure(lib, hello)

	top := schema.NewStructure("top", now)
	for angle := 0; angle < 360; angle += 90 {
		sref := schema.NewSRef("hello", 0, 0)
		schema.SetAngle(schema.Transform(sref, true), float64(angle))
		schema.AddElement(top, sref)
	}
	schema.AddStructure(lib, top)

	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	if err := grammar.Serialize(w, lib); err != nil {
		log.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}

	parsed, err := grammar.Parse(codec.NewReader(&buf), schema.Library)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(schema.Name(parsed))
	for _, str := range schema.Structures(parsed) {
		fmt.Printf("%s: %d elements\n", schema.Name(str), len(schema.Elements(str)))
	}
	for _, sref := range schema.Elements(schema.Structures(parsed)[1]) {
		fmt.Print(schema.Angle(schema.Transform(sref, false)), " ")
	}
	fmt.Println()

	// Output:
	// HELLO.DB
	// hello: 5 elements
	// top: 4 elements
	// 0 90 180 270
}
