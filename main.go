package main

import "github.com/wolfitem/ai-digest/cmd"

func main() {
	cmd.Execute()
}
