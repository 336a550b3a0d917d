package main

import (
	"os"

	cwn "github.com/CovidWA/covidwa-nearby/golang"
)

func main() {
	os.Exit(cwn.Run(os.Args))
}
