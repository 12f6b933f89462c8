// Command clockplan solves, explains and dry-runs STM32 clock plans on the
// host against a simulated RCC.
package main

import (
	"fmt"
	"os"

	_ "clocktree-go/clock/family/all"
)

func main() {
	sess := newSession(os.Stdout)
	if err := newRootCmd(sess).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
