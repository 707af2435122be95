package main

import "campuspulse/internal/app"

func main() {
	app.Main()
}
