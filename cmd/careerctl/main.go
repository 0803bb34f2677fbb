package main

import "github.com/godilite/career-predictor/internal/cli"

func main() {
	cli.Execute()
}
