package main

import "github.com/tatianab/text-game/internal/cli"

// Running the module root is the same as running cmd/game.
func main() {
	cli.Execute()
}
