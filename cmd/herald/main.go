// Package main is the entry point for the Herald service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/herald/cmd/herald/app"
)

func main() {
	app.NewApp().Run()
}
