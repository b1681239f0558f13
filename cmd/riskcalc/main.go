package main

import (
	"os"

	"github.com/Re-Quant/calc/cmd/riskcalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
