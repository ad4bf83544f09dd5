package main

import "github.com/Archith7/MediSaarthi/cmd"

func main() {
	cmd.Execute()
}
