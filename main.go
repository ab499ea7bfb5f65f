package main

import "RoomBooker/cmd"

func main() {
	cmd.Execute()
}
