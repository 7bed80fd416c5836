package main

import (
	"os"

	"kishanmitra/client/internal/app"
)

func main() {
	os.Exit(app.Run())
}
