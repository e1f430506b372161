package domain

// FeedPhase enumerates the consumer-facing states of a feed.
type FeedPhase string

// Feed phases.
const (
	PhaseIdle        FeedPhase = "IDLE"
	PhaseLoading     FeedPhase = "LOADING"
	PhaseLoadingMore FeedPhase = "LOADING_MORE"
	PhaseSuccess     FeedPhase = "SUCCESS"
	PhaseEmpty       FeedPhase = "EMPTY"
	PhaseError       FeedPhase = "ERROR"
)

// FeedState is the tagged state exposed to feed consumers. Only the fields
// relevant to the phase are populated: Entries for Success and LoadingMore
// (and for an Error that interrupted LoadingMore, so prior results stay
// visible), Message and IsRateLimit for Error.
type FeedState struct {
	Phase       FeedPhase
	Entries     []RepositoryEntry
	Message     string
	IsRateLimit bool
}

// IdleState is the state before any fetch has been requested.
func IdleState() FeedState {
	return FeedState{Phase: PhaseIdle}
}

// LoadingState is the state while the first page is being fetched.
func LoadingState() FeedState {
	return FeedState{Phase: PhaseLoading}
}

// LoadingMoreState keeps current entries visible while the next page loads.
func LoadingMoreState(entries []RepositoryEntry) FeedState {
	return FeedState{Phase: PhaseLoadingMore, Entries: entries}
}

// SuccessState carries the merged entries of a feed.
func SuccessState(entries []RepositoryEntry) FeedState {
	return FeedState{Phase: PhaseSuccess, Entries: entries}
}

// EmptyState is reached when a completed page-1 fetch yields no entries.
func EmptyState() FeedState {
	return FeedState{Phase: PhaseEmpty}
}

// ErrorState carries a display message and classification flag. Entries
// holds previously shown results when the failure happened during
// LoadingMore.
func ErrorState(message string, isRateLimit bool, entries []RepositoryEntry) FeedState {
	return FeedState{Phase: PhaseError, Message: message, IsRateLimit: isRateLimit, Entries: entries}
}

// Terminal reports whether the phase ends a fetch cycle.
func (s FeedState) Terminal() bool {
	switch s.Phase {
	case PhaseSuccess, PhaseEmpty, PhaseError, PhaseIdle:
		return true
	default:
		return false
	}
}
