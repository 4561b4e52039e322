// memberctl runs member imports from the command line against the same
// store the admin server uses.
package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/members/internal/cli"
	_ "github.com/JonMunkholm/members/internal/core/entities" // register importable entities
)

func main() {
	_ = godotenv.Load()

	a := &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		lookup: os.LookupEnv,
	}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		if !errors.Is(err, errRolledBack) {
			cli.RenderError(os.Stderr, err)
		}
		os.Exit(1)
	}
}
