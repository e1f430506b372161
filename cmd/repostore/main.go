package main

import (
	"github.com/repostore-labs/repostore-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
