package domain

import "strings"

// MountCommand is one shell-invocable argument list.
type MountCommand []string

// String joins the arguments with single spaces for display.
func (c MountCommand) String() string {
	return strings.Join(c, " ")
}
