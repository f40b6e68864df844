package qurantag

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoShards        = errors.New("shard count must be at least 1")
	ErrMissingArtifact = errors.New("artifact does not exist")
	ErrConcurrency     = errors.New("concurrency must be at least 1")
)

// CombinedError collects the per-shard failures of one stage.
type CombinedError struct {
	Message string
	Errors  []error
}

func (c *CombinedError) append(err error) {
	c.Errors = append(c.Errors, err)
}

func (c *CombinedError) appendIfError(err error) {
	if err != nil {
		c.append(err)
	}
}

// errorOrNil returns nil when nothing was collected, so callers can return it directly.
func (c *CombinedError) errorOrNil() error {
	if c == nil || len(c.Errors) == 0 {
		return nil
	}
	return c
}

func (c CombinedError) Error() string {
	var result []string
	for _, err := range c.Errors {
		result = append(result, err.Error())
	}
	return fmt.Sprintf("%s: %s", c.Message, strings.Join(result, ", "))
}

// Unwrap lets errors.Is look through every collected error.
func (c CombinedError) Unwrap() []error {
	return c.Errors
}
