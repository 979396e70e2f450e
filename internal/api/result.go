package api

// GenericFailure is shown when a call fails without a usable reason.
const GenericFailure = "An unexpected error occurred. Please try again."

// Kind classifies a Notice the way the console renders toasts.
type Kind int

const (
	KindSuccess Kind = iota
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	default:
		return "error"
	}
}

// Notice is the user-facing outcome of an action.
type Notice struct {
	Kind    Kind
	Message string
}

// Result is the normalized outcome of a backend call.
type Result[T any] struct {
	OK     bool
	Data   T
	Errors []string
	// Detail describes a failure that carried no backend errors, such as a
	// transport error or an HTML error page. It is for logs, not toasts.
	Detail string
}

func Ok[T any](data T) Result[T] { return Result[T]{OK: true, Data: data} }

// Reject builds a business-rule rejection.
func Reject[T any](errs ...string) Result[T] { return Result[T]{Errors: errs} }

// Fail builds a failure with a diagnostic detail.
func Fail[T any](detail string) Result[T] { return Result[T]{Detail: detail} }

// Rejected reports a backend refusal with at least one reason.
func (r Result[T]) Rejected() bool { return !r.OK && len(r.Errors) > 0 }

// Notice maps the result onto a toast: success, a warning showing the first
// backend error, or a generic error.
func (r Result[T]) Notice(success string) Notice {
	switch {
	case r.OK:
		return Notice{Kind: KindSuccess, Message: success}
	case r.Rejected():
		return Notice{Kind: KindWarning, Message: r.Errors[0]}
	default:
		return Notice{Kind: KindError, Message: GenericFailure}
	}
}
