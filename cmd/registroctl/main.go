package main

import "github.com/klfajardo/registro-evento-chile/internal/cli"

func main() {
	cli.Execute()
}
