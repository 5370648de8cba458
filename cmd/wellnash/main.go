package main

import "github.com/wellnash/wellnash/cmd/wellnash/cmd"

func main() {
	cmd.Execute()
}
