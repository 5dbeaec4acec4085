// Package statemachine implements the hierarchical workflow state model and
// the notification hub that broadcasts state changes.
//
// # States
//
// The state set is closed. A single root, CreateTemplate, groups the four
// concrete states an editing session moves through:
//
//	CreateTemplate
//	  ├── NoImage        (initial)
//	  ├── ImageLoaded
//	  ├── Processing
//	  └── TemplateReady
//
// Guards are written against the substate relation rather than equality, so
// "any state under CreateTemplate" and "exactly ImageLoaded" use the same
// primitive. The relation is answered from a precomputed ancestor table.
//
// # Notification
//
// A Machine owns the current State and a Subject. Every SetState call, even
// one that reassigns the current value, delivers exactly one synchronous
// notification to every attached Listener in attachment order. Reassigning
// the same value is how callers force listeners to refresh after an in-place
// change to the data they display.
//
// # Thread Safety
//
// Machine and Subject are safe for concurrent use. Listeners run on the
// goroutine that called SetState and may call Machine.Current.
package statemachine
