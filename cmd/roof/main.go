// Command roof runs the roof customizer service and its command-line tools.
//
// Usage:
//
//	roof serve [--config roof.yaml] [--http :8080] [--grpc :9090]
//	roof resolve --style hip --windows 2
//	roof catalog list|validate [file]
//	roof tui
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
