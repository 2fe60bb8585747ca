package main

import (
	"os"

	"horse.fit/shloka/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
