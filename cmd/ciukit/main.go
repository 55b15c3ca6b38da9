// CIUKit - Collision induced unfolding analysis tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/CIUKit/cmd/ciukit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
