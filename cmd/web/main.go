package main

import "rentshare_backend/internal/app"

func main() {
	app.Run()
}
