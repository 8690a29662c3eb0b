package health

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Result is the outcome of a single indicator check.
type Result struct {
	Name    string         `json:"name"`
	Status  Status         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// NewResult builds a Result from a name and a boolean verdict. A Down
// result always carries a failure reason.
func NewResult(name string, healthy bool, details map[string]any) Result {
	status := StatusUp
	if !healthy {
		status = StatusDown
	}
	return Result{
		Name:    name,
		Status:  status,
		Details: details,
	}
}

func Up(name string) Result {
	return Result{Name: name, Status: StatusUp}
}

func Down(name, reason string) Result {
	return Result{Name: name, Status: StatusDown, Error: reason}
}

func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

func (r Result) Healthy() bool {
	return r.Status == StatusUp
}
