package main

import (
	"github.com/0xPolygon/polygon-xt/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}
