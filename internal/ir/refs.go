package ir

import "fmt"

// RefKind distinguishes the kinds of supporting reference.
type RefKind int

const (
	// RefBug points at an issue report.
	RefBug RefKind = iota
	// RefPullRequest points at a change request.
	RefPullRequest
	// RefCommit points at a specific change identifier.
	RefCommit
)

// Label returns the rendering label for the kind.
func (k RefKind) Label() string {
	switch k {
	case RefBug:
		return "Bug"
	case RefPullRequest:
		return "Pull"
	case RefCommit:
		return "Commit"
	}
	return fmt.Sprintf("RefKind(%d)", int(k))
}

// Key returns the lowercase key used by the CUE, JSON, and SQL forms.
func (k RefKind) Key() string {
	switch k {
	case RefBug:
		return "bug"
	case RefPullRequest:
		return "pull"
	case RefCommit:
		return "commit"
	}
	return ""
}

// ParseRefKind maps a key ("bug", "pull", "commit") back to its kind.
// "pull_request" is accepted as an alias for "pull".
func ParseRefKind(key string) (RefKind, error) {
	switch key {
	case "bug":
		return RefBug, nil
	case "pull", "pull_request":
		return RefPullRequest, nil
	case "commit":
		return RefCommit, nil
	}
	return 0, fmt.Errorf("unknown reference kind %q: must be one of bug, pull, commit", key)
}

// RefType is a typed pointer to supporting evidence.
// The locator is an opaque URI; it is rendered, never dereferenced.
type RefType struct {
	Kind    RefKind
	Locator string
}

// Bug builds a bug-report reference.
func Bug(locator string) RefType { return RefType{Kind: RefBug, Locator: locator} }

// PullRequest builds a change-request reference.
func PullRequest(locator string) RefType { return RefType{Kind: RefPullRequest, Locator: locator} }

// Commit builds a specific-change reference.
func Commit(locator string) RefType { return RefType{Kind: RefCommit, Locator: locator} }

// String renders the reference as "<Kind>: <locator>".
func (r RefType) String() string {
	return r.Kind.Label() + ": " + r.Locator
}
