package main

import (
	"github.com/entrascan/entrascan/cmd"
)

func main() {
	cmd.Execute()
}
