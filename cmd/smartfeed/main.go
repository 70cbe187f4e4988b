// Command smartfeed corre el generador de recomendaciones y el agregador de
// historial sobre archivos YAML, sin levantar el servidor.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
