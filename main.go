package main

import "github.com/creativeprojects/mailsync/cmd"

func main() {
	cmd.Execute()
}
