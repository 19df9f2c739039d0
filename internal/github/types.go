package github

// maxDescriptionLen is GitHub's limit on status descriptions.
const maxDescriptionLen = 140

// Repository is the part of a repository payload buildasaur reads.
type Repository struct {
	FullName      string      `json:"full_name"`
	Private       bool        `json:"private"`
	DefaultBranch string      `json:"default_branch"`
	Permissions   Permissions `json:"permissions"`
}

// Permissions of the authenticated user on a repository.
type Permissions struct {
	Admin bool `json:"admin"`
	Push  bool `json:"push"`
	Pull  bool `json:"pull"`
}

// PullRequest is an open pull request.
type PullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	Head    Ref    `json:"head"`
	Base    Ref    `json:"base"`
}

// Ref is one side of a pull request.
type Ref struct {
	Ref  string   `json:"ref"`
	SHA  string   `json:"sha"`
	Repo *RepoRef `json:"repo,omitempty"`
	User *UserRef `json:"user,omitempty"`
}

// RepoRef identifies the repository a ref lives in.
type RepoRef struct {
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	SSHURL   string `json:"ssh_url"`
}

// UserRef is the owner of a ref.
type UserRef struct {
	Login string `json:"login"`
}

// State is a commit status state.
type State string

const (
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailure State = "failure"
	StateError   State = "error"
)

// Valid reports whether s is one of the states GitHub accepts.
func (s State) Valid() bool {
	switch s {
	case StatePending, StateSuccess, StateFailure, StateError:
		return true
	default:
		return false
	}
}

// CommitStatus is a status attached to a commit.
type CommitStatus struct {
	State       State  `json:"state"`
	TargetURL   string `json:"target_url,omitempty"`
	Description string `json:"description,omitempty"`
	Context     string `json:"context"`
}

// Equal reports whether two statuses would render the same on GitHub.
func (s CommitStatus) Equal(other CommitStatus) bool {
	return s.State == other.State &&
		s.Description == other.Description &&
		s.Context == other.Context &&
		s.TargetURL == other.TargetURL
}
