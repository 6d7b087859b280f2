// Command tdbgdemo wires an in-memory fake host to the debugger engine
// and reads host-script commands from standard input, one per line,
// printing each command's result. It exists to exercise the engine manually; it is not part of
// the engine's public contract.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/saxyguy81/tdb/commands"
	"github.com/saxyguy81/tdb/engine"
	"github.com/saxyguy81/tdb/internal/testhost"
)

func main() {
	host := testhost.New()
	eng := engine.New(host)
	disp := commands.New(eng)

	logrus.SetLevel(logrus.InfoLevel)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("tdbgdemo: type host-script commands, Ctrl-D to exit")
	for {
		fmt.Print("tdb> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		out, err := disp.Execute(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}
