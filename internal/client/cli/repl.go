package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	AddRecipe(ctx context.Context, args []string) error
	EditRecipe(ctx context.Context, args []string) error
	ListRecipes(ctx context.Context, args []string) error
	ShowRecipe(ctx context.Context, args []string) error
	DeleteRecipe(ctx context.Context, args []string) error
	RestoreRecipe(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error

	Roll(ctx context.Context, args []string) error
	Reroll(ctx context.Context, args []string) error
	Accept(ctx context.Context, args []string) error
	Defaults(ctx context.Context, args []string) error
	Prefs(ctx context.Context, args []string) error

	History(ctx context.Context, args []string) error
	ShowHistory(ctx context.Context, args []string) error
	Check(ctx context.Context, args []string) error
	DeleteHistory(ctx context.Context, args []string) error

	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error

	SyncConfig(ctx context.Context, args []string) error
	SyncTest(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Passphrase(ctx context.Context, args []string) error
}

const helpText = `Recipes:
  add                          add a recipe
  edit <id>                    edit a recipe
  list [category] [#tag] [deleted]
                               list recipes
  show <id>                    show a recipe
  delete <id> | restore <id>   move a recipe to or from the trash
  search <text>                find recipes by name, tag or ingredient
Menu:
  roll [meat=2 soup=1 ...]     roll a random menu
  reroll <n>                   replace dish n of the rolled menu
  accept [summary]             save the rolled menu to history
  defaults [meat=2 ...]        show or set the default roll counts
  prefs [name value]           show or set a preference
History:
  history [limit]              list accepted menus
  showhistory <id>             show a menu with its checklist
  check <id> <n>               tick checklist item n
  deletehistory <id>           remove a menu from history
Backup and sync:
  export <file>                write a backup file
  import <file> [strategy]     merge a backup file (skip, update_if_newer, overwrite)
  syncconfig                   set the sync server and passwords
  synctest                     check the connection to the server
  upload                       replace the server backup with local data
  download [strategy]          merge the server backup into local data
  sync                         download, merge and upload
  passphrase                   set or remove the local passphrase
  exit | quit                  leave the program`

// runREPL starts a simple read–eval–print loop for the menuroll CLI.
//
// It reads a line from in, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Command errors are printed and the loop goes on. While a command runs,
// Ctrl-C cancels it instead of ending the program.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("menuroll %s> ", statusFn(ctx)))
		line, err := in.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var run func(context.Context, []string) error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)
			continue
		case "add":
			run = a.AddRecipe
		case "edit":
			run = a.EditRecipe
		case "l", "list":
			run = a.ListRecipes
		case "show":
			run = a.ShowRecipe
		case "delete", "rm":
			run = a.DeleteRecipe
		case "restore":
			run = a.RestoreRecipe
		case "search":
			run = a.Search
		case "roll":
			run = a.Roll
		case "reroll":
			run = a.Reroll
		case "accept":
			run = a.Accept
		case "defaults":
			run = a.Defaults
		case "prefs":
			run = a.Prefs
		case "history":
			run = a.History
		case "showhistory":
			run = a.ShowHistory
		case "check":
			run = a.Check
		case "deletehistory":
			run = a.DeleteHistory
		case "export":
			run = a.Export
		case "import":
			run = a.Import
		case "syncconfig":
			run = a.SyncConfig
		case "synctest":
			run = a.SyncTest
		case "upload":
			run = a.Upload
		case "download":
			run = a.Download
		case "sync":
			run = a.Sync
		case "passphrase":
			run = a.Passphrase
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		cctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		err = run(cctx, args)
		stop()
		if err != nil {
			printlnFn("Error:", errorMessage(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}
