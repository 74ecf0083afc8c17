package main

import (
	"flag"
	"fmt"
	"log"
)

const usage = `usage: vamosc <command> [<args>]

Commands
   compile     Compile a .vamos program to a C source file
   watch       Recompile a .vamos program on every save, pushing diagnostics over a websocket
   repl        Run a read-eval-print loop over guard/action expressions
   help        Display help message
`

func main() {
	flag.Parse()
	log.SetFlags(0)
	args := flag.Args()
	if len(args) == 0 {
		log.Printf("missing command\n\n")
		fmt.Print(usage)
		return
	}
	rest := args[1:]
	var err error
	switch cmd := args[0]; cmd {
	case "compile":
		err = compileCmd(rest)
	case "watch":
		err = watchCmd(rest)
	case "repl":
		err = replCmd(rest)
	case "help":
		fmt.Print(usage)
	default:
		log.Printf("unknown command: %s\n\n", cmd)
		fmt.Print(usage)
	}
	if err != nil {
		log.Fatalf("vamosc: %+v\n", err)
	}
}
