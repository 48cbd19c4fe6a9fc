package service

// Kind groups errors by how the transport should report them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindForbidden
)

// Error is a domain error with a human-readable message. Two errors match
// under errors.Is when their codes are equal, so a sentinel still matches
// after its message or details have been specialized.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// DetailsKey names the response field Details are reported under.
	DetailsKey string
	Details    []string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) withMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

func (e *Error) withDetails(details []string) *Error {
	c := *e
	c.Details = details
	return &c
}

var (
	ErrInvalidInput       = &Error{Kind: KindValidation, Code: "InvalidInput", Message: "Invalid input"}
	ErrDuplicateEmail     = &Error{Kind: KindConflict, Code: "DuplicateEmail", Message: "User with this email already exists"}
	ErrInvalidCredentials = &Error{Kind: KindAuth, Code: "InvalidCredentials", Message: "Invalid credentials"}
	ErrForbidden          = &Error{Kind: KindForbidden, Code: "Forbidden", Message: "You don't have permission to perform this action"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Code: "UserNotFound", Message: "User not found"}
	ErrInvalidOwner       = &Error{Kind: KindValidation, Code: "InvalidOwner", Message: "Project owner does not exist"}
	ErrInvalidMember      = &Error{Kind: KindValidation, Code: "InvalidMember", Message: "Some member IDs are invalid.", DetailsKey: "invalidMembers"}
	ErrProjectNotFound    = &Error{Kind: KindNotFound, Code: "ProjectNotFound", Message: "Project not found"}
	ErrTaskNotFound       = &Error{Kind: KindNotFound, Code: "TaskNotFound", Message: "Task not found"}
	ErrSubtaskNotFound    = &Error{Kind: KindNotFound, Code: "SubtaskNotFound", Message: "Subtask not found"}
	ErrInvalidAssignee    = &Error{Kind: KindValidation, Code: "InvalidAssignee", Message: "Assigned user not found"}
)

func invalidInput(msg string) error {
	return ErrInvalidInput.withMessage(msg)
}
