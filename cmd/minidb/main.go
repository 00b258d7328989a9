package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/paulwritescode/minidb/internal/config"
	"github.com/paulwritescode/minidb/internal/storage"
	"github.com/paulwritescode/minidb/internal/types"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	snapshotPath := flag.String("snapshot", "", "override snapshot file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	if *snapshotPath != "" {
		cfg.Snapshot.Path = *snapshotPath
	}
	types.GlobalLogger = types.InitLogger(types.ParseLevel(cfg.Log.Level), os.Stderr)

	persist, err := storage.NewPersistence(storage.PersistenceConfig{
		SnapshotPath: cfg.Snapshot.Path,
		Autosave:     cfg.Snapshot.Autosave,
		ArchiveDir:   cfg.Archive.Dir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error initializing persistence: %v\n", err)
		os.Exit(1)
	}

	db := storage.New()
	if err := persist.LoadSnapshot(db); err != nil {
		fmt.Fprintf(os.Stderr, "error loading snapshot: %v\n", err)
		os.Exit(1)
	}

	repl := &repl{db: db, persist: persist}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		// Input is piped in; read plain lines without the prompt.
		repl.runPiped()
	} else {
		repl.runInteractive()
	}

	if cfg.Snapshot.Path != "" {
		if err := persist.SaveSnapshot(db); err != nil {
			fmt.Fprintf(os.Stderr, "error saving snapshot: %v\n", err)
		}
	}
}

type repl struct {
	db      *storage.Database
	persist *storage.Persistence
}

func (r *repl) runInteractive() {
	fmt.Println("MiniDB SQL shell")
	fmt.Println("Type .help for help, exit to quit")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "minidb> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			fmt.Println("Goodbye!")
			return
		}
		if !r.handleLine(strings.TrimSpace(line)) {
			fmt.Println("Goodbye!")
			return
		}
	}
}

func (r *repl) runPiped() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if !r.handleLine(strings.TrimSpace(scanner.Text())) {
			return
		}
	}
}

// handleLine runs one input line; the return value is false when the REPL
// should exit.
func (r *repl) handleLine(line string) bool {
	if line == "" {
		return true
	}
	switch strings.ToLower(line) {
	case "exit", "quit":
		return false
	}
	if strings.HasPrefix(line, ".") {
		r.handleMeta(line)
		return true
	}

	res, err := r.db.ExecuteCommand(line)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return true
	}
	printResult(res)
	if res.Mutation {
		if err := r.persist.AfterWrite(r.db); err != nil {
			fmt.Printf("Warning: autosave failed: %v\n", err)
		}
	}
	return true
}

func (r *repl) handleMeta(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".help":
		printHelp()
	case ".tables":
		names := r.db.ListTables()
		if len(names) == 0 {
			fmt.Println("No tables found.")
			return
		}
		for _, name := range names {
			t, err := r.db.Table(name)
			if err != nil {
				continue
			}
			fmt.Printf("  %-20s %6d rows, %2d indexes\n", name, t.RowCount(), len(t.IndexedColumns()))
		}
	case ".describe":
		if len(fields) < 2 {
			fmt.Println("Usage: .describe <table>")
			return
		}
		res, err := r.db.ExecuteCommand("DESCRIBE " + fields[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		printResult(res)
	case ".clear":
		fmt.Print("\033[2J\033[H")
	case ".save":
		path := r.persist.SnapshotPath()
		if len(fields) > 1 {
			path = fields[1]
		}
		if err := r.db.Save(path); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Saved to %s\n", path)
	case ".load":
		path := r.persist.SnapshotPath()
		if len(fields) > 1 {
			path = fields[1]
		}
		if err := r.db.Load(path); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Loaded from %s\n", path)
	case ".archive":
		if err := r.persist.ExportArchive(r.db); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("Archive export complete")
	default:
		fmt.Printf("Unknown command: %s\n", fields[0])
	}
}

func printHelp() {
	fmt.Println("Supported statements:")
	fmt.Println("  CREATE TABLE <name> (<col> <TYPE> [PRIMARY] [UNIQUE] [INDEX], ...)")
	fmt.Println("  INSERT INTO <name> [(<col>, ...)] VALUES (<literal>, ...)")
	fmt.Println("  SELECT <*|cols> FROM <t> [JOIN <t2> ON <t1>.<c1>=<t2>.<c2>] [WHERE <col>=<literal>]")
	fmt.Println("  UPDATE <name> SET <col>=<literal>[, ...] [WHERE <col>=<literal>]")
	fmt.Println("  DELETE FROM <name> [WHERE <col>=<literal>]")
	fmt.Println("  SHOW TABLES / DESCRIBE <name>")
	fmt.Println("Types: INT, STRING, BOOLEAN")
	fmt.Println("Meta commands:")
	fmt.Println("  .tables             list tables with row and index counts")
	fmt.Println("  .describe <table>   show table structure")
	fmt.Println("  .save [path]        write a snapshot")
	fmt.Println("  .load [path]        restore from a snapshot")
	fmt.Println("  .archive            export tables to the Parquet archive")
	fmt.Println("  .clear              clear the screen")
	fmt.Println("  exit                quit")
}

// printResult renders a Result: a fixed-width table for reads, an affected
// count for writes.
func printResult(res *storage.Result) {
	if res.Columns == nil {
		if res.Mutation {
			fmt.Printf("OK, %d row(s) affected\n", res.Affected)
		}
		return
	}
	if len(res.Rows) == 0 {
		fmt.Println("Empty result set")
		return
	}

	widths := make([]int, len(res.Columns))
	for i, col := range res.Columns {
		widths[i] = len(col)
	}
	for _, row := range res.Rows {
		for i, col := range res.Columns {
			if n := len(types.FormatValue(row[col])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, col := range res.Columns {
		if i > 0 {
			fmt.Print(" | ")
		}
		fmt.Printf("%-*s", widths[i], col)
	}
	fmt.Println()
	for i := range res.Columns {
		if i > 0 {
			fmt.Print("-+-")
		}
		fmt.Print(strings.Repeat("-", widths[i]))
	}
	fmt.Println()
	for _, row := range res.Rows {
		for i, col := range res.Columns {
			if i > 0 {
				fmt.Print(" | ")
			}
			fmt.Printf("%-*s", widths[i], types.FormatValue(row[col]))
		}
		fmt.Println()
	}
	fmt.Printf("(%d rows)\n", len(res.Rows))
}
