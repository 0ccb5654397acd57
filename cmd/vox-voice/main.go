// Command vox-voice drives the voice command router from the terminal.
// Each stdin line is one utterance; "|" separates recognition alternatives.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
