package main

import "github.com/berge472/izzymart/cmd"

func main() {
	cmd.Execute()
}
