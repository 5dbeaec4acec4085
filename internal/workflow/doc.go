// Package workflow orchestrates an image editing session.
//
// A Session combines a statemachine.Machine, an imaging.Codec and a
// template.Generator. Each operation checks the current state, delegates the
// real work, updates the current image and undo history, and then sets the
// next state, which notifies listeners:
//
//	| From                       | Operation        | To                         |
//	|----------------------------|------------------|----------------------------|
//	| any but Processing         | ImportImage      | ImageLoaded                |
//	| ImageLoaded, TemplateReady | Apply, Undo      | ImageLoaded                |
//	| ImageLoaded                | GenerateTemplate | Processing → TemplateReady |
//
// Operations that fail leave the state and current image as they were, with
// two documented exceptions: ApplyTransformation records its undo snapshot
// before transforming, so a failed transform still uses a slot, and a failed
// GenerateTemplate rolls the state back from Processing to ImageLoaded
// before returning the generator's error.
//
// The undo history keeps DefaultHistoryCapacity snapshots; the oldest is
// evicted when a new one does not fit.
//
// Sessions are safe for concurrent use. Operations are serialized, except
// that template computation runs without the operation lock so that other
// callers see Processing and are refused instead of blocking.
package workflow
