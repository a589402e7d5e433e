package main

import "shortify-be/cmd"

func main() {
	cmd.Execute()
}
