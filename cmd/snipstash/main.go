// Command snipstash is the terminal client for a SnipStash server:
// register, log in, save snippets, search them, and browse the
// collection interactively.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
