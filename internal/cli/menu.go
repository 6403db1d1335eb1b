package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rbright/traymondctl/internal/ipc"
)

var menuChoices = []struct {
	code  ipc.Code
	label string
}{
	{ipc.CodeMinimizeCurrent, "Minimize current window"},
	{ipc.CodeMinimizeByHandle, "Minimize window by handle"},
	{ipc.CodeShowAll, "Show all windows"},
	{ipc.CodeExit, "Exit Traymond"},
}

// Menu prints the command list to out and reads a selection from in.
// The selection number is the wire code.
func Menu(in io.Reader, out io.Writer) (ipc.Command, error) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "Available commands:")
	for _, choice := range menuChoices {
		fmt.Fprintf(out, "%d. %s\n", choice.code, choice.label)
	}
	fmt.Fprint(out, "> ")

	line, err := readLine(scanner)
	if err != nil {
		return ipc.Command{}, err
	}

	n, err := strconv.ParseInt(line, 10, 32)
	code := ipc.Code(n)
	if err != nil || !code.Valid() {
		return ipc.Command{}, fmt.Errorf("%w: invalid selection %q", ErrInvalidInput, line)
	}

	if code != ipc.CodeMinimizeByHandle {
		return ipc.Command{Code: code}, nil
	}

	fmt.Fprint(out, "Enter window handle (hex): ")
	line, err = readLine(scanner)
	if err != nil {
		return ipc.Command{}, err
	}
	handle, err := ParseHandle(line)
	if err != nil {
		return ipc.Command{}, err
	}
	return ipc.MinimizeByHandle(handle), nil
}

func readLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read selection: %w", err)
		}
		return "", errors.New("read selection: unexpected end of input")
	}
	return strings.TrimSpace(scanner.Text()), nil
}
