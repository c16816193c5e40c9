package debugger

import (
	"errors"
	"fmt"

	"github.com/peterh/liner"
)

// commandNames lists every command word the console completer offers,
// kept alongside dispatch in debugger.go.
var commandNames = []string{
	"run", "continue", "step", "break", "delete",
	"info", "print", "disasm", "reset", "help", "quit",
}

// RunConsole runs the line-oriented REPL debugger front end: a
// peterh/liner prompt with history and tab completion over the
// command set.
func RunConsole(dbg *Debugger) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		for _, name := range commandNames {
			if len(partial) <= len(name) && name[:len(partial)] == partial {
				out = append(out, name)
			}
		}
		return out
	})

	for {
		cmdLine, err := line.Prompt("tms99105> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return fmt.Errorf("console: %w", err)
		}

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			return nil
		}

		line.AppendHistory(cmdLine)

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		if out := dbg.GetOutput(); out != "" {
			fmt.Print(out)
		}
	}
}
