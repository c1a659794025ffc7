package main

import (
	"log"

	"github.com/anoixa/art-gallery/cmd"
	"github.com/anoixa/art-gallery/config"
)

func main() {
	log.Printf("art gallery %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
