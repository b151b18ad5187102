package main

import "github.com/dbsmedya/sheetsync/cmd/sheetsync/cmd"

func main() {
	cmd.Execute()
}
