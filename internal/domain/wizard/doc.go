// Package wizard implements the landscape assessment step controller and the
// per-category tool editor.
//
// The Controller walks the catalog one category at a time:
//
//	step 0 --next--> step 1 --next--> ... step N-1 --submit--> submitted
//	       <--prev--         <--prev--
//
// Only adjacent moves exist. Submit is allowed on the last step only; it
// commits the final snapshot and leaves the controller terminal.
//
// An Editor works on a copy of one category's selection and reports the full
// selection to its Listener (normally the selection.Store) after every
// effective change. It holds no authoritative state.
package wizard
