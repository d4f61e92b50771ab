// Command pontaj is the command-line work-hour tracker.
package main

import "github.com/warp/pontaj/cli"

func main() {
	cli.Execute()
}
