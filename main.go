package main

import "github.com/KaramelBytes/pivotree/cmd"

func main() {
	cmd.Execute()
}
