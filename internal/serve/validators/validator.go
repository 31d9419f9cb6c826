package validators

// Validator accumulates request validation failures. Checks run in request
// order and the first failure's message is the one rendered to the client, so
// the response matches the documented per-field messages.
type Validator struct {
	Errors map[string]any

	ordered []string
}

func NewValidator() *Validator {
	return &Validator{
		Errors: make(map[string]any),
	}
}

func (v *Validator) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// CheckError is a convenience method for checking if an error is nil
func (v *Validator) CheckError(err error, key, message string) *Validator {
	if err != nil && message == "" {
		message = err.Error()
	}
	v.Check(err == nil, key, message)
	return v
}

func (v *Validator) AddError(key, message string) {
	if _, ok := v.Errors[key]; !ok {
		v.ordered = append(v.ordered, key)
	}
	v.Errors[key] = message
}

// FirstError returns the message of the earliest failed check, or "" when all
// checks passed.
func (v *Validator) FirstError() string {
	if len(v.ordered) == 0 {
		return ""
	}
	if msg, ok := v.Errors[v.ordered[0]].(string); ok {
		return msg
	}
	return ""
}
