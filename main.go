package main

import "github.com/contentradar/scraper/cmd"

func main() {
	cmd.Main()
}
