package main

import (
	"github.com/lwalter/unisock/cmd"
)

func main() {
	cmd.Execute()
}
