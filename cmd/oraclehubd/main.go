package main

import (
	"github.com/LeJamon/goOracleHub/internal/cli"
)

func main() {
	cli.Execute()
}
