package navmesh

type Status uint32

const (
	// High level status.
	StatusFailure    Status = 1 << 31 // Operation failed.
	StatusSuccess    Status = 1 << 30 // Operation succeed.
	StatusInProgress Status = 1 << 29 // Operation still in progress.

	// Detail information for status.
	StatusDetailMask    Status = 0x0ffffff
	StatusWrongMagic    Status = 1 << 0 // Input data is not recognized.
	StatusWrongVersion  Status = 1 << 1 // Input data is in wrong version.
	StatusInvalidParam  Status = 1 << 3 // An input parameter was invalid.
	StatusOutOfNodes    Status = 1 << 5 // Query ran out of nodes during search.
	StatusPartialResult Status = 1 << 6 // Query did not reach the end location, returning best guess.
	StatusNoPath        Status = 1 << 8 // Open set exhausted before reaching the goal.
)

// Returns true of status is success.
func (s Status) Succeed() bool {
	return (s & StatusSuccess) != 0
}

// Returns true of status is failure.
func (s Status) Failed() bool {
	return (s & StatusFailure) != 0
}

// Returns true of status is in progress.
func (s Status) InProgress() bool {
	return (s & StatusInProgress) != 0
}

// Returns true if specific detail is set.
func (s Status) Detail(detail Status) bool {
	return (s & detail) != 0
}

func (s Status) String() string {
	switch {
	case s.Succeed():
		return "success"
	case s.Detail(StatusOutOfNodes):
		return "failure(out of nodes)"
	case s.Detail(StatusInvalidParam):
		return "failure(invalid param)"
	case s.Detail(StatusNoPath):
		return "failure(no path)"
	case s.Detail(StatusWrongMagic):
		return "failure(wrong magic)"
	case s.Detail(StatusWrongVersion):
		return "failure(wrong version)"
	case s.Failed():
		return "failure"
	}
	return "unknown"
}
