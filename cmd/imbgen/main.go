package main

import "github.com/postalworks/imbgen/cmd/imbgen/cmd"

func main() {
	cmd.Execute()
}
