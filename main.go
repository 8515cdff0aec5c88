// main.go
package main

import (
	"log"

	"github.com/ariebrainware/aba-tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
