// Command visactl is the operator CLI: build plans offline, inspect
// retrieval and seed the admin knowledge base.
package main

import (
	"os"

	"visaverse-backend/internal/shared/config"
)

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		os.Exit(1)
	}
}
