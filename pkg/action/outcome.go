package action

// OutcomeKind classifies what produced an outcome.
type OutcomeKind string

const (
	OutcomeAttack   OutcomeKind = "attack"
	OutcomeMovement OutcomeKind = "movement"
	OutcomeItem     OutcomeKind = "item"
	OutcomeInfo     OutcomeKind = "info"
)

// ErrorKind is the closed taxonomy of action-level failures. A failed
// dispatch is recorded as an Outcome with an ErrorKind; it never aborts
// the run.
type ErrorKind string

const (
	ErrNone                  ErrorKind = ""
	ErrNoValidTarget         ErrorKind = "no_valid_target"
	ErrNoValidDestination    ErrorKind = "no_valid_destination"
	ErrOutOfRange            ErrorKind = "out_of_range"
	ErrItemNotFound          ErrorKind = "item_not_found"
	ErrItemUnusable          ErrorKind = "item_unusable"
	ErrUnknownActionType     ErrorKind = "unknown_action_type"
	ErrExecutorPanic         ErrorKind = "executor_panic"
	ErrConditionEval         ErrorKind = "condition_eval_error"
	ErrResourceLoad          ErrorKind = "resource_load_error"
	ErrConcurrentRunRejected ErrorKind = "concurrent_run_rejected"
)

// Outcome is the normalized result of dispatching one action. It is the
// only channel through which later actions observe earlier results.
type Outcome struct {
	Success  bool        `json:"success"`
	Kind     OutcomeKind `json:"kind"`
	Hit      *bool       `json:"hit,omitempty"` // attack outcomes only
	Damage   int         `json:"damage,omitempty"`
	Critical bool        `json:"critical,omitempty"`
	Message  string      `json:"message,omitempty"`
	Err      ErrorKind   `json:"error_kind,omitempty"`
}

// Failed builds a failed Outcome for the given taxonomy entry.
func Failed(kind OutcomeKind, errKind ErrorKind, msg string) Outcome {
	return Outcome{Kind: kind, Err: errKind, Message: msg}
}

// HitOutcome builds an attack Outcome with an explicit hit flag.
func HitOutcome(hit bool, damage int, critical bool, msg string) Outcome {
	return Outcome{
		Success:  true,
		Kind:     OutcomeAttack,
		Hit:      &hit,
		Damage:   damage,
		Critical: critical,
		Message:  msg,
	}
}
