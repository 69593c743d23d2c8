// Command mailtreectl is a diagnostic CLI over the mailtree binary
// tree index format: create, inspect, and rebuild ".tree" files
// directly, without a running mail server.
package main

import "github.com/nomasters/mailtree/cmd"

func main() {
	cmd.Execute()
}
