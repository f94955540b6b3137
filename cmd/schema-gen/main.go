// Command schema-gen writes the versioned configuration JSON Schema.
//
// Usage: schema-gen [dir]    (default: schema)
package main

import (
	"fmt"
	"os"

	"github.com/smykla-skalski/enforcer/internal/schema"
)

func main() {
	dir := "schema"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	path, err := schema.WriteFile(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "schema-gen: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(path)
}
