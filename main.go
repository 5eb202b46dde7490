// focus-cli - block distracting domains for a focus session.
//
// Build: go build -o focus-cli
//
// Usage:
//   focus-cli init                # write a starter config
//   sudo focus-cli activate       # apply the blocklist, start the session
//   focus-cli status              # session state and elapsed time
//   focus-cli run                 # attach a timer; Ctrl+C deactivates
//   sudo focus-cli deactivate     # restore the hosts file, end the session

package main

import (
	"os"

	"focus-cli/cli"
)

func main() {
	os.Exit(cli.Runner{}.Execute(os.Args[1:]))
}
