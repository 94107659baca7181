// main is the entry point of the timemachine CLI.
package main

import (
	"github.com/huangsam/timemachine/cmd"
	"github.com/huangsam/timemachine/internal/contract"
	"github.com/huangsam/timemachine/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStore()
	if err != nil {
		contract.LogFatal("Error running timemachine", err)
	}
}
