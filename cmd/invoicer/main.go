// Command invoicer imports invoice spreadsheets and serves the stored invoices.
package main

import (
	"context"
	"os"

	"github.com/roach88/invoicer/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
