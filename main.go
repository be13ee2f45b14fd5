package main

import "rightimage/cli"

func main() {
	cli.Execute()
}
