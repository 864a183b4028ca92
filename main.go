package main

import "github.com/saadjs/gonext/cmd/gonext"

func main() {
	gonext.Execute()
}
