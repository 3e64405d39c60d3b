package main

import (
	"os"

	"github.com/Mohsinsiddi/autosend/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
