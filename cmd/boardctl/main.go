package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

func main() {
	root := newRootCmd(os.Stdin, os.Stdout)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, domain.ErrNoJSONObject) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
