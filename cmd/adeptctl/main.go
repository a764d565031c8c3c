// cmd/adeptctl/main.go
//
// Operator CLI for the required-fields service.
package main

import (
	"os"

	"github.com/yanizio/adept-reqfields/cmd/adeptctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
