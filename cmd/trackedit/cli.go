package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/trackedit/trackedit/internal/dispatcher"
	"github.com/trackedit/trackedit/internal/handlers"
	"github.com/trackedit/trackedit/internal/storage"
	"github.com/trackedit/trackedit/internal/util"
)

const usage = `usage: trackedit <command> [arguments]

commands:
  run <session> [script|-]     apply the edit commands in script (default stdin), then save
  exec <session> <cmd> [args]  apply a single edit command, then save
  info <session>               print a summary of a stored session
  journal <session> [limit]    print the stored edit journal
  list                         list open and stored sessions
  upload <session> [tag]       send a stored session to the track viewer
  version                      print version information
`

// run executes one CLI invocation and returns the process exit code.
func run(args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return 2
	}

	command := strings.ToLower(args[0])
	switch command {
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	case "version":
		fmt.Fprintf(stdout, "%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
		return 0
	}

	configDir := os.Getenv(configDirEnv)
	if configDir == "" {
		configDir = "."
	}
	a, err := newApp(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer a.close()

	if err := a.runCommand(command, args[1:], stdin, stdout); err != nil {
		a.logger.Error("Command failed", "command", command, "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) runCommand(command string, args []string, stdin io.Reader, stdout io.Writer) error {
	switch command {
	case "run":
		if len(args) < 1 {
			return errors.New("run: missing session name")
		}
		script := stdin
		if len(args) > 1 && args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			defer f.Close()
			script = f
		}
		return a.runScript(args[0], script, stdout)

	case "exec":
		if len(args) < 2 {
			return errors.New("exec: usage: exec <session> <cmd> [args]")
		}
		if err := a.openSession(args[0]); err != nil {
			return err
		}
		if err := a.dispatchAndPrint(args[0], args[1], args[2:], stdout); err != nil {
			return err
		}
		return a.dispatchAndPrint(args[0], handlers.CmdSessionSave, nil, stdout)

	case "info":
		if len(args) < 1 {
			return errors.New("info: missing session name")
		}
		if _, err := a.dispatch(args[0], handlers.CmdSessionLoad, nil); err != nil {
			return err
		}
		return a.dispatchAndPrint(args[0], handlers.CmdTrackInfo, nil, stdout)

	case "journal":
		if len(args) < 1 {
			return errors.New("journal: missing session name")
		}
		return a.dispatchAndPrint(args[0], handlers.CmdJournal, args[1:], stdout)

	case "list":
		return a.dispatchAndPrint("", handlers.CmdSessionList, nil, stdout)

	case "upload":
		if len(args) < 1 {
			return errors.New("upload: missing session name")
		}
		tag := ""
		if len(args) > 1 {
			tag = args[1]
		}
		return a.uploadSession(args[0], tag, stdout)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// openSession loads the stored session or starts an empty one.
func (a *app) openSession(name string) error {
	_, err := a.dispatch(name, handlers.CmdSessionLoad, nil)
	if errors.Is(err, storage.ErrSessionNotFound) {
		a.logger.Info("Starting new session", "session", name)
		_, err = a.dispatch(name, handlers.CmdSessionNew, nil)
	}
	return err
}

// runScript applies one command per line. Blank lines and lines starting
// with '#' are skipped. The session is saved only if every line succeeds.
func (a *app) runScript(session string, script io.Reader, stdout io.Writer) error {
	if err := a.openSession(session); err != nil {
		return err
	}

	scanner := bufio.NewScanner(script)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields, err := util.SplitArgs(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(fields) == 0 {
			continue
		}
		if err := a.dispatchAndPrint(session, fields[0], fields[1:], stdout); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return a.dispatchAndPrint(session, handlers.CmdSessionSave, nil, stdout)
}

func (a *app) dispatch(session, command string, args []string) (any, error) {
	if !a.dispatcher.HasHandler(command) {
		return nil, fmt.Errorf("unknown edit command %q", command)
	}
	return a.dispatcher.Dispatch(dispatcher.Event{
		Command:   command,
		Session:   session,
		Args:      args,
		Timestamp: time.Now(),
	})
}

func (a *app) dispatchAndPrint(session, command string, args []string, stdout io.Writer) error {
	result, err := a.dispatch(session, command, args)
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	if result == nil {
		return nil
	}
	out, err := json.Marshal(map[string]any{"command": command, "result": result})
	if err != nil {
		return fmt.Errorf("%s: encoding result: %w", command, err)
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
