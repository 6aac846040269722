// Command globe renders a rotating globe with dynasty territory overlays, or
// streams the same overlay state over a websocket when run headless.
package main

import (
	"fmt"
	"os"
	"runtime"
)

func init() {
	// GLFW and OpenGL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
