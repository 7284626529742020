package provider

import "github.com/docgate/docgate/pkg/handle"

// ConsentOutcome is the result code delivered with an asynchronous consent
// response.
type ConsentOutcome int

const (
	// OutcomeCancelled means the user dismissed or declined the prompt.
	OutcomeCancelled ConsentOutcome = iota

	// OutcomeSuccess means the user picked a tree and the platform issued a
	// handle for it.
	OutcomeSuccess
)

// ConsentResult is the asynchronous response to a PromptForTree call. It is
// correlated to the originating request by RequestCode; results carrying an
// unknown code are ignored by the authorization manager.
type ConsentResult struct {
	RequestCode   string
	Outcome       ConsentOutcome
	GrantedHandle handle.Handle
	Flags         PermissionFlags
}

// ConsentUI is the host consent surface. PromptForTree is fire-and-forget:
// it returns immediately and the eventual result arrives on the Results
// channel at an arbitrary later time, possibly never (a user who walks away
// produces neither a grant nor a cancel).
type ConsentUI interface {
	PromptForTree(requestCode string)
	Results() <-chan ConsentResult
}

// StaticConsent is a ConsentUI that answers every prompt with a fixed,
// preconfigured tree. It stands in for an interactive consent dialog on
// headless deployments where the operator authorizes a tree through
// configuration instead of a picker.
type StaticConsent struct {
	// Tree is the handle granted on every prompt.
	Tree handle.Handle

	// Flags are the permission flags attached to the grant.
	Flags PermissionFlags

	// Deny makes every prompt resolve to a cancellation instead.
	Deny bool

	results chan ConsentResult
}

// NewStaticConsent creates a consent surface that grants the given tree with
// the given flags on every prompt.
func NewStaticConsent(tree handle.Handle, flags PermissionFlags) *StaticConsent {
	return &StaticConsent{
		Tree:    tree,
		Flags:   flags,
		results: make(chan ConsentResult, 4),
	}
}

// PromptForTree resolves immediately with the configured answer.
func (c *StaticConsent) PromptForTree(requestCode string) {
	res := ConsentResult{RequestCode: requestCode, Outcome: OutcomeCancelled}
	if !c.Deny {
		res.Outcome = OutcomeSuccess
		res.GrantedHandle = c.Tree
		res.Flags = c.Flags
	}

	// Non-blocking send: if nobody is draining results, dropping the
	// response mirrors a consent dialog whose answer was never collected.
	select {
	case c.results <- res:
	default:
	}
}

// Results returns the channel consent responses are delivered on.
func (c *StaticConsent) Results() <-chan ConsentResult {
	return c.results
}
