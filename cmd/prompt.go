package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// promptHours asks for the simulation length on out and reads a positive
// whole number of hours (one hour per tick) from in.
func promptHours(in io.Reader, out io.Writer) (int, error) {
	fmt.Fprint(out, "Enter the simulation duration in hours (1 hour = 1 tick): ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return 0, fmt.Errorf("reading duration: %w", err)
	}
	return parseHours(line)
}

func parseHours(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("duration must be a whole number of hours, got %q", strings.TrimSpace(s))
	}
	if n <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %d", n)
	}
	return n, nil
}
