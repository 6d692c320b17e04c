package ragagent

import "fmt"

// ErrIngest reports a source file that could not be turned into a Document.
type ErrIngest struct {
	Source  string
	Message string
}

func (e *ErrIngest) Error() string {
	return fmt.Sprintf("ingest %s: %s", e.Source, e.Message)
}

// ErrConfig reports an invalid configuration value rejected at construction
// time, before any pipeline work starts.
type ErrConfig struct {
	Field   string
	Message string
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}
