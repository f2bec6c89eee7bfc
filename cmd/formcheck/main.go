package main

import "formcheck/internal/cli"

func main() {
	cli.Execute()
}
