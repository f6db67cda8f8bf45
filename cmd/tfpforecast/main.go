// Command tfpforecast lists countries and forecasts agricultural total factor
// productivity from the Our World in Data USDA dataset.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
