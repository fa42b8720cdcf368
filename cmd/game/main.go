package main

import "github.com/tatianab/text-game/internal/cli"

func main() {
	cli.Execute()
}
