package command

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoValidCommands is returned when a payload yields no usable command.
var ErrNoValidCommands = errors.New("command: no valid commands")

// ErrUnknownKind is returned for a discriminant outside the closed set.
var ErrUnknownKind = errors.New("command: unknown kind")

const maxLineSize = 1 << 20

type envelope struct {
	Command Kind `json:"command"`
}

// ParseLine decodes and validates a single JSON command line.
func ParseLine(line string) (Command, error) {
	var env envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		return nil, fmt.Errorf("command: decode envelope: %w", err)
	}
	newCmd, ok := factories[env.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Command)
	}
	cmd := newCmd()
	if err := json.Unmarshal([]byte(line), cmd); err != nil {
		return nil, fmt.Errorf("command: decode %s: %w", env.Command, err)
	}
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("command: invalid %s: %w", env.Command, err)
	}
	return cmd, nil
}

// LineError records why one payload line was dropped.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Parse splits raw into lines and decodes each independently. Blank lines and
// Markdown code fences are ignored; undecodable or invalid lines are returned
// as LineErrors and never abort the parse.
func Parse(raw string) ([]Command, []LineError) {
	var (
		cmds    []Command
		dropped []LineError
	)
	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.TrimSuffix(line, ",")
		cmd, err := ParseLine(line)
		if err != nil {
			dropped = append(dropped, LineError{Line: n, Err: err})
			continue
		}
		cmds = append(cmds, cmd)
	}
	if err := sc.Err(); err != nil {
		dropped = append(dropped, LineError{Line: n + 1, Err: err})
	}
	return cmds, dropped
}
