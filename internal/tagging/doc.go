// Package tagging implements the tagging workflow engine: the question
// catalog, task assignment with multi-tagger fan-out, the record ledger,
// the task state machine, and the reviewed-record export.
//
// Every operation takes an explicit auth.Identity and runs its reads and
// writes inside one store transaction. Status changes are compare-and-swap
// updates, and the approval counter increment shares the transaction with
// the transition that triggers it, so duplicate concurrent approvals count
// once.
//
// Errors are the typed errors from the services package: ValidationError,
// NotFoundError, ForbiddenError, and ConflictError.
package tagging
