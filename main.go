package main

import "github.com/ByLCY/lessonplan/cli"

func main() {
	cli.Execute()
}
