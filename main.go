package main

import "hotel-management/cmd"

func main() {
	cmd.Execute()
}
