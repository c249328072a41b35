package main

import "github.com/veldt-labs/grantrag-cli/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
