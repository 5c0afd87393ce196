package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterh/liner"

	"github.com/medassist/medassist/pkg/config"
	"github.com/medassist/medassist/pkg/log"
	"github.com/medassist/medassist/pkg/orchestrator"
	"github.com/medassist/medassist/pkg/rag"
)

// Commands for the command-line interface
const (
	cmdHelp     = "!help"
	cmdQuit     = "!quit"
	cmdSummary  = "!summary"
	cmdHistory  = "!history"
	cmdExport   = "!export"
	cmdSearch   = "!search"
	cmdMemory   = "!memory"
	cmdSessions = "!sessions"
	cmdClear    = "!clear"
	cmdConfig   = "!config"
)

const helpText = `
MedAssist - Command Reference:
-----------------------------------------
!help                  - Show this help message
!summary <id> [focus]  - Summarize a patient's stored history
!history <id>          - Show a patient's visit history
!export <id>           - Dump a patient's stored memory records
!search <query>        - Run the medical search aggregator directly
!memory                - Show vector memory statistics
!sessions              - List active session logs
!clear                 - Clear all memory records and sessions
!config                - Show current configuration
!quit                  - Exit the application

Notes:
- Any other input is processed as a healthcare query
- Patient queries can use "P001: question" or "P001|question" form
- Scheduling understands phrases like "next week" or "end of March"
- Tab completion and up/down history are available`

// historyFile stores the REPL command history
const historyFile = ".medassist_history"

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	stdinMode := flag.Bool("s", false, "Read from stdin and exit when complete")
	flag.Parse()

	// .env is optional; environment overrides still apply without it
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Setup(log.Config{
		Level:  log.Level(cfg.Logging.Level),
		Format: log.Format(cfg.Logging.Format),
	})

	log.Info("Starting MedAssist")

	ctx := context.Background()
	system, err := orchestrator.NewSystemFromConfig(ctx, cfg)
	if err != nil {
		log.Error("Failed to initialize system", "error", err)
		os.Exit(1)
	}
	defer system.Close()

	runCLI(ctx, system, cfg, *stdinMode)
}

func runCLI(ctx context.Context, system *orchestrator.System, cfg *config.Config, stdinMode bool) {
	if stdinMode {
		scanner := bufio.NewScanner(os.Stdin)
		printWelcome(cfg, "stdin mode")

		for scanner.Scan() {
			input := strings.TrimSpace(scanner.Text())
			if input == "" || strings.HasPrefix(input, "#") {
				continue
			}
			if input == cmdQuit {
				fmt.Println("Goodbye!")
				return
			}
			fmt.Printf("medassist> %s\n", input)
			if !processCommand(ctx, input, system, cfg) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Printf("Error reading stdin: %v\n", err)
		}
		fmt.Println("Goodbye!")
		return
	}

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(false)
	line.SetCompleter(func(prefix string) (c []string) {
		commands := []string{cmdHelp, cmdQuit, cmdSummary, cmdHistory, cmdExport,
			cmdSearch, cmdMemory, cmdSessions, cmdClear, cmdConfig}
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, prefix) {
				c = append(c, cmd)
			}
		}
		return
	})

	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	printWelcome(cfg, "interactive")
	fmt.Println("Type !help for available commands.")

	for {
		input, err := line.Prompt("medassist> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nGoodbye!")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == cmdQuit {
			fmt.Println("Goodbye!")
			break
		}
		if !processCommand(ctx, input, system, cfg) {
			break
		}
	}
}

func printWelcome(cfg *config.Config, mode string) {
	fmt.Printf("\n=== MedAssist (%s) ===\n", mode)
	fmt.Println("Completion Provider:", cfg.Completion.Provider)
	fmt.Println("EHR Driver:", cfg.EHR.Driver)
	if cfg.Memory.Path != "" {
		fmt.Println("Memory Path:", cfg.Memory.Path)
	} else {
		fmt.Println("Memory: in-process only")
	}
}

// processCommand handles one input line and reports whether the CLI
// should keep running.
func processCommand(ctx context.Context, input string, system *orchestrator.System, cfg *config.Config) bool {
	if strings.HasPrefix(input, "!") {
		parts := strings.SplitN(input, " ", 2)
		arg := ""
		if len(parts) > 1 {
			arg = strings.TrimSpace(parts[1])
		}

		switch parts[0] {
		case cmdHelp:
			fmt.Println(helpText)

		case cmdQuit:
			return false

		case cmdSummary:
			if arg == "" {
				fmt.Println("Usage: !summary <patient-id> [focus]")
				return true
			}
			fields := strings.SplitN(arg, " ", 2)
			focus := ""
			if len(fields) > 1 {
				focus = fields[1]
			}
			summary, err := system.RAG.SummarizePatientHistory(ctx, fields[0], focus)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return true
			}
			fmt.Println(summary)

		case cmdHistory:
			if arg == "" {
				fmt.Println("Usage: !history <patient-id>")
				return true
			}
			visits, err := system.Store.GetHistory(ctx, arg)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return true
			}
			for _, v := range visits {
				fmt.Printf("%s  %s (%s)\n  %s\n", v.VisitDate, v.Reason, v.Provider, v.Summary)
			}

		case cmdExport:
			if arg == "" {
				fmt.Println("Usage: !export <patient-id>")
				return true
			}
			records, err := system.Memory.ExportPatient(ctx, arg)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return true
			}
			if len(records) == 0 {
				fmt.Println("No memory records for", arg)
				return true
			}
			for _, rec := range records {
				fmt.Printf("[%s] %s\n", rec.Metadata["type"], rec.Content)
			}

		case cmdSearch:
			if arg == "" {
				fmt.Println("Usage: !search <query>")
				return true
			}
			results := system.Search.CombinedResults(ctx, arg, 10)
			fmt.Println(rag.FormatResults(results))

		case cmdMemory:
			stats := system.Memory.Stats()
			fmt.Printf("Records: %d | Sessions: %d | Persistent: %t\n",
				stats.TotalRecords, stats.Sessions, stats.Persistent)

		case cmdSessions:
			ids := system.Memory.SessionIDs()
			if len(ids) == 0 {
				fmt.Println("No active sessions")
				return true
			}
			for _, id := range ids {
				fmt.Printf("%s (%d interactions)\n", id, len(system.Memory.SessionHistory(id, 0)))
			}

		case cmdClear:
			if err := system.Memory.ClearAll(ctx); err != nil {
				fmt.Printf("Error: %v\n", err)
				return true
			}
			fmt.Println("All memory records and sessions cleared.")

		case cmdConfig:
			fmt.Printf("Completion: provider=%s model=%s min_interval=%.1fs\n",
				cfg.Completion.Provider, cfg.Completion.OpenAI.Model, cfg.Completion.MinRequestInterval)
			fmt.Printf("EHR: driver=%s dsn=%s seed=%t\n", cfg.EHR.Driver, cfg.EHR.DSN, cfg.EHR.Seed)
			fmt.Printf("Memory: path=%s collection=%s chunk=%d/%d\n",
				cfg.Memory.Path, cfg.Memory.Collection, cfg.Memory.ChunkSize, cfg.Memory.ChunkOverlap)
			fmt.Printf("Search: max_per_source=%d\n", cfg.Search.MaxPerSource)

		default:
			fmt.Printf("Unknown command: %s (try !help)\n", parts[0])
		}
		return true
	}

	result, err := system.Orchestrator.Process(ctx, input)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return true
	}

	if result.Status == orchestrator.StatusError {
		fmt.Printf("[%s] %s\n", result.Intent, result.Message)
		return true
	}
	fmt.Printf("[%s via %s]\n%s\n", result.Intent, result.AgentUsed, result.SynthesizedAnswer)
	return true
}
