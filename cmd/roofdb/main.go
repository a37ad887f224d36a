package main

import (
	"context"

	"github.com/Bitfisherllc/roofdb/cmd/roofdb/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
