// Package main is the operator CLI: schema migrations, admin bootstrap,
// development tokens and spreadsheet exports.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
