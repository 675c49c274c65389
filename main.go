package main

import "github.com/rkot1/rtt-viewer/internal/cmd"

func main() {
	cmd.Execute()
}
