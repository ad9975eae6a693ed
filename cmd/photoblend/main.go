package main

import "github.com/MeKo-Tech/photoblend/internal/cmd"

func main() {
	cmd.Execute()
}
