package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gear6io/mtgapi/cli"
)

func main() {
	if err := cli.ExecuteWithContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
