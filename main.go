package main

import "github.com/naka-gawa/merged-pr-stats/cmd"

func main() {
	cmd.Execute()
}
