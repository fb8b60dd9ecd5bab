// Command cli registers a ledger owner and prints a bearer token for it.
//
//	cli -u alice@example.com [-c config.json] [-d dsn] [-s secret] [-t minutes]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/spendy/internal/flagx"
	"github.com/dmitrijs2005/spendy/internal/server"
	"github.com/dmitrijs2005/spendy/internal/server/config"
)

func main() {

	ctx := context.Background()
	args := os.Args[1:]

	var owner string
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&owner, "u", "", "owner to register")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-u"})); err != nil || owner == "" {
		log.Fatalf("usage: cli -u <owner> [server flags]")
	}

	cfg, err := config.Load(args)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	token, err := app.IssueToken(ctx, owner)
	app.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Println(token)
}
