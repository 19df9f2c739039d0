package reconcile

import (
	"fmt"

	"github.com/buildasaur/buildasaur/internal/ciserver"
	"github.com/buildasaur/buildasaur/internal/github"
)

// StatusContext is the commit status context buildasaur posts under.
const StatusContext = "Buildasaur"

// statusFor maps the latest integration of a bot to a commit status. A nil
// integration means the bot has not integrated yet.
func statusFor(integration *ciserver.Integration) github.CommitStatus {
	status := github.CommitStatus{Context: StatusContext}

	switch {
	case integration == nil:
		status.State = github.StatePending
		status.Description = "Waiting for the first integration"
	case !integration.Completed():
		status.State = github.StatePending
		step := integration.CurrentStep
		if step == "" {
			step = ciserver.StepPending
		}
		status.Description = fmt.Sprintf("Integration #%d %s", integration.Number, step)
	default:
		status.State, status.Description = completedStatus(integration)
	}
	return status
}

func completedStatus(i *ciserver.Integration) (github.State, string) {
	switch i.Result {
	case ciserver.ResultSucceeded:
		if i.Summary != nil && i.Summary.TestsCount > 0 {
			return github.StateSuccess, fmt.Sprintf("Integration #%d passed, %d tests", i.Number, i.Summary.TestsCount)
		}
		return github.StateSuccess, fmt.Sprintf("Integration #%d passed", i.Number)
	case ciserver.ResultWarnings, ciserver.ResultAnalyzerWarnings:
		return github.StateSuccess, fmt.Sprintf("Integration #%d passed with warnings", i.Number)
	case ciserver.ResultTestFailures:
		if i.Summary != nil && i.Summary.TestsCount > 0 {
			return github.StateFailure, fmt.Sprintf("Integration #%d: %d of %d tests failed",
				i.Number, i.Summary.TestFailureCount, i.Summary.TestsCount)
		}
		return github.StateFailure, fmt.Sprintf("Integration #%d: tests failed", i.Number)
	case ciserver.ResultBuildErrors, ciserver.ResultBuildFailed:
		return github.StateFailure, fmt.Sprintf("Integration #%d: build failed", i.Number)
	case ciserver.ResultCanceled:
		return github.StateError, fmt.Sprintf("Integration #%d was canceled", i.Number)
	default:
		return github.StateError, fmt.Sprintf("Integration #%d ended with %s", i.Number, i.Result)
	}
}
