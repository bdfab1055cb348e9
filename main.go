package main

import "github.com/Mohsinsiddi/solsend/cmd"

func main() {
	cmd.Execute()
}
