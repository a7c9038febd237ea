// Package uciops translates the UCI-option and UCI-command surface named in
// spec.md §6 into calls on a *experience.Store. It performs no board or
// search logic of its own — per the repository's explicit non-goal, a UCI
// dispatcher is an external collaborator that merely forwards option
// settings and commands here.
package uciops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sugarchess/experience/pkg/experience"
)

// Option names an engine exposes for the Experience Store, exactly as they
// would appear in a UCI "setoption name <Name> value <value>" line.
const (
	OptionFile           = "Experience File"
	OptionEnabled        = "Experience Enabled"
	OptionReadonly       = "Experience Readonly"
	OptionEvalImportance = "Experience Book Eval Importance"
)

// Command names the non-standard UCI commands this package understands.
const (
	CommandShow       = "exp"
	CommandShowExtra  = "expex"
	CommandDefrag     = "defrag"
	CommandMerge      = "merge"
	CommandImportCPGN = "import_cpgn"
	CommandCPGNToExp  = "cpgn_to_exp"
)

// Dispatcher binds a Store to the UCI surface. It is deliberately thin: each
// method does one translation and calls straight into Store.
type Dispatcher struct {
	store *experience.Store
}

// NewDispatcher wraps store for UCI-facing option/command translation.
func NewDispatcher(store *experience.Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// SetOption applies one "setoption name <name> value <value>" line. Unknown
// names are ignored, matching a UCI engine's usual tolerance for options it
// doesn't recognize.
func (d *Dispatcher) SetOption(name, value string) error {
	switch name {
	case OptionFile:
		return d.store.Init(value)
	case OptionEnabled:
		on, err := parseUCIBool(value)
		if err != nil {
			return err
		}
		d.store.SetEnabled(on)
	case OptionReadonly:
		on, err := parseUCIBool(value)
		if err != nil {
			return err
		}
		d.store.SetReadonly(on)
	case OptionEvalImportance:
		// stored by whatever constructed the Store via WithEvalImportance;
		// re-parsing here only validates the value is well formed, since
		// Store has no setter for it post-construction (it is read at Show
		// call time via the caller-supplied evalImportance argument).
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("uciops: %s must be an integer: %w", OptionEvalImportance, err)
		}
	}
	return nil
}

// Command dispatches one non-standard command line (already split into the
// command word and its remaining arguments) to the Store.
func (d *Dispatcher) Command(name string, args []string) (string, error) {
	switch name {
	case CommandDefrag:
		if len(args) != 1 {
			return "", fmt.Errorf("uciops: %s requires exactly one path argument", CommandDefrag)
		}
		result, err := experience.Defrag(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("defragmented %d -> %d entries", result.EntriesBefore, result.EntriesAfter), nil

	case CommandMerge:
		if len(args) < 3 {
			return "", fmt.Errorf("uciops: %s requires an output path and at least two input paths", CommandMerge)
		}
		result, err := experience.Merge(args[0], args[1:])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("merged %d files into %d positions (%d entries)", result.InputsMerged, result.Positions, result.EntriesTotal), nil

	case CommandShow, CommandShowExtra:
		return "", fmt.Errorf("uciops: %s requires a live board position, not available from the command surface alone", name)

	case CommandImportCPGN, CommandCPGNToExp:
		return "", fmt.Errorf("uciops: %s is handled by cmd/expctl, which has the engine/position dependencies this package does not", name)
	}
	return "", fmt.Errorf("uciops: unknown command %q", name)
}

func parseUCIBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("uciops: expected true/false, got %q", value)
}
