package main

import "github.com/hhd-dev/hhd-bootstrap/cmd/hhd-bootstrap/cmd"

func main() {
	cmd.Execute()
}
