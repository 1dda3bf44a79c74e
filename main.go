package main

import "nba-predictions-go/cmd"

func main() {
	cmd.Execute()
}
