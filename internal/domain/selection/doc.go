// Package selection persists the user's tool selections per category.
//
// A Store keeps an ordered list of ToolSelection values, at most one per
// category, in the order categories were first touched. Every upsert that
// leaves the store non-empty writes a JSON snapshot to the injected Backend
// under LiveKey. CommitFinal writes a second, independent snapshot under
// FinalKey when the assessment is submitted.
//
// Storage failures never reach the caller: a missing or malformed snapshot
// loads as an empty store and write errors are logged and dropped, so the
// wizard can always make progress.
//
// Example Usage:
//
//	store := selection.NewStore(storage.NewMemory(), logger)
//	store.Load()
//	store.Upsert("itsm", []string{"ServiceNow"}, []string{"In-house CMDB"})
//	store.CommitFinal(store.Snapshot())
package selection
