package main

import "github.com/MrSnakeDoc/navsite/internal/cli"

func main() {
	cli.Execute()
}
