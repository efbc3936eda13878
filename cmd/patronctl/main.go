// Command patronctl administers a patron database: it applies migrations,
// seeds demo customers, and explains tier decisions.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
