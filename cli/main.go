/*
Copyright © 2022 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/p1nant0m/packet-eater/cli/cmd"

func main() {
	cmd.Execute()
}
