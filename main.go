// The main package for the seo-api executable.
package main

import "github.com/hoxtonmix/seo-api/cmd"

func main() {
	cmd.Execute()
}
