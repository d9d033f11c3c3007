package main

import (
	"os"

	"horse.fit/brandstudio/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
