package llm

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// errStop ends readSSE without error.
var errStop = errors.New("stop")

// readSSE calls onData with the payload of every "data:" line.
// onData returns errStop to finish early. A clean EOF returns nil.
func readSSE(body io.Reader, onData func(data string) error) error {
	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data != "" {
				if cbErr := onData(data); cbErr != nil {
					if cbErr == errStop {
						return nil
					}
					return cbErr
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
