package main

import "github.com/KaramelBytes/ibesdash/cmd"

func main() {
	cmd.Execute()
}
