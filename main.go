package main

import "github.com/playlist-insights/cmd"

func main() {
	cmd.Execute()
}
