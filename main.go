// SPDX-License-Identifier: MPL-2.0

package main

import cmd "shade-cli/cmd/shade"

func main() {
	cmd.Execute()
}
