// Package vault provides the places database snapshots are kept.
package vault

import (
	"fmt"
	"strings"
)

// checkName rejects snapshot names that could escape a vault's namespace.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid snapshot name: %q", name)
	}
	return nil
}
