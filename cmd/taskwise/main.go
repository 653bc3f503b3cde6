package main

import "github.com/sandeepkv93/taskwise/internal/cli"

func main() {
	cli.Execute()
}
