package main

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"

	"github.com/jrsteele09/go-session-client/cmd/sessionctl/cmd"
	"github.com/jrsteele09/go-session-client/internal/config"
)

func main() {
	displayAppname(config.New().GetAppName())
	cmd.Execute()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
