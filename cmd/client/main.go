package main

import "github.com/KrishnaKumarSoni/gmeetpro/internal/client/cli"

func main() {
	cli.Execute()
}
