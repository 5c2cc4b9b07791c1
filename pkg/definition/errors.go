package definition

import (
	"fmt"
	"strings"
)

// Definition sections a BuildError can refer to.
const (
	SectionBody       = "body"
	SectionComponents = "components"
)

// BuildError is the terminal error of a failed build. It names the node that
// could not be compiled; the cause is available through errors.Is/As.
type BuildError struct {
	Section string // SectionBody or SectionComponents
	Group   string // component group, empty for the body
	Key     string // variant key, empty for the body
	NodeID  string
	Err     error
}

func (e *BuildError) Error() string {
	path := []string{e.Section}
	if e.Group != "" {
		path = append(path, e.Group)
	}
	if e.Key != "" {
		path = append(path, e.Key)
	}
	return fmt.Sprintf("build %s (node %s): %v", strings.Join(path, "."), e.NodeID, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
