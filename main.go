package main

import "github.com/memoryleak07/GFScraper/cmd"

func main() {
	cmd.Execute()
}
