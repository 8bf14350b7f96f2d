package main

import (
	"pydocparser/cmd/pydocparser/commands"
	"pydocparser/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	commands.Execute(ctx)
}
