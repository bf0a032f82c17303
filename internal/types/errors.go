package types

import "github.com/automenta/senars/internal/errs"

var (
	errNilTerm            = errs.New(errs.InvalidInput, "task term must not be nil")
	errMissingTruth       = errs.New(errs.InvalidInput, "belief/goal tasks require a truth value")
	errUnexpectedTruth    = errs.New(errs.InvalidInput, "question tasks must not carry a truth value")
	errUnknownPunctuation = errs.New(errs.InvalidInput, "unknown task punctuation")
)
