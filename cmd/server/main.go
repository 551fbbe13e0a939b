package main

import "github.com/lobbyn/relay/internal/cli"

func main() {
	cli.Execute()
}
