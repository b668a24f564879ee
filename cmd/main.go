package main

import (
	"github.com/corray333/backend-labs/cafeteria/internal/app"
	"github.com/corray333/backend-labs/cafeteria/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
