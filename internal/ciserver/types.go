package ciserver

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// BotTypeIntegration is the only bot type buildasaur creates.
const BotTypeIntegration = 1

// Bot is a CI server bot. ID and Rev are assigned by the server.
type Bot struct {
	ID              string           `json:"_id,omitempty"`
	Rev             string           `json:"_rev,omitempty"`
	Name            string           `json:"name"`
	Type            int              `json:"type"`
	RequiresUpgrade bool             `json:"requiresUpgrade"`
	Configuration   BotConfiguration `json:"configuration"`
}

// BotConfiguration is what a bot builds and when.
type BotConfiguration struct {
	SchemeName                  string              `json:"schemeName"`
	BuiltFromClean              int                 `json:"builtFromClean"`
	ScheduleType                int                 `json:"scheduleType"`
	PeriodicScheduleInterval    int                 `json:"periodicScheduleInterval"`
	HourOfIntegration           int                 `json:"hourOfIntegration"`
	MinutesAfterHourToIntegrate int                 `json:"minutesAfterHourToIntegrate"`
	WeeklyScheduleDay           int                 `json:"weeklyScheduleDay"`
	PerformsAnalyzeAction       bool                `json:"performsAnalyzeAction"`
	PerformsTestAction          bool                `json:"performsTestAction"`
	PerformsArchiveAction       bool                `json:"performsArchiveAction"`
	Triggers                    []map[string]any    `json:"triggers"`
	DeviceSpecification         DeviceSpecification `json:"deviceSpecification"`
	SourceControlBlueprint      Blueprint           `json:"sourceControlBlueprint"`
}

// DeviceSpecification selects the devices tests run on.
type DeviceSpecification struct {
	Filters           []DeviceFilter `json:"filters"`
	DeviceIdentifiers []string       `json:"deviceIdentifiers"`
}

// DeviceFilter restricts devices of one platform.
type DeviceFilter struct {
	Platform   Platform `json:"platform"`
	FilterType int      `json:"filterType"`
}

// Platform identifies a device platform.
type Platform struct {
	Identifier string `json:"identifier"`
}

// Blueprint tells the CI server which repository and branch to check out.
type Blueprint struct {
	Identifier              string                       `json:"DVTSourceControlWorkspaceBlueprintIdentifierKey"`
	Name                    string                       `json:"DVTSourceControlWorkspaceBlueprintNameKey"`
	Version                 int                          `json:"DVTSourceControlWorkspaceBlueprintVersion"`
	RelativePathToProject   string                       `json:"DVTSourceControlWorkspaceBlueprintRelativePathToProjectKey"`
	PrimaryRemoteRepository string                       `json:"DVTSourceControlWorkspaceBlueprintPrimaryRemoteRepositoryKey"`
	Locations               map[string]BlueprintLocation `json:"DVTSourceControlWorkspaceBlueprintLocationsKey"`
	RemoteRepositories      []RemoteRepository           `json:"DVTSourceControlWorkspaceBlueprintRemoteRepositoriesKey"`
	WorkingCopyPaths        map[string]string            `json:"DVTSourceControlWorkspaceBlueprintWorkingCopyPathsKey"`
	WorkingCopyStates       map[string]int               `json:"DVTSourceControlWorkspaceBlueprintWorkingCopyStatesKey"`
}

// BlueprintLocation pins a working copy to a branch.
type BlueprintLocation struct {
	BranchIdentifier string `json:"DVTSourceControlBranchIdentifierKey"`
	BranchOptions    int    `json:"DVTSourceControlBranchOptionsKey"`
	LocationType     string `json:"DVTSourceControlWorkspaceBlueprintLocationTypeKey"`
}

// RemoteRepository is a remote the CI server clones from.
type RemoteRepository struct {
	URL        string `json:"DVTSourceControlWorkspaceBlueprintRemoteRepositoryURLKey"`
	System     string `json:"DVTSourceControlWorkspaceBlueprintRemoteRepositorySystemKey"`
	Identifier string `json:"DVTSourceControlWorkspaceBlueprintRemoteRepositoryIdentifierKey"`
}

// Branch returns the branch the primary working copy is pinned to.
func (b Blueprint) Branch() string {
	return b.Locations[b.PrimaryRemoteRepository].BranchIdentifier
}

// Integration steps and results reported by the CI server.
const (
	StepPending   = "pending"
	StepCompleted = "completed"

	ResultSucceeded        = "succeeded"
	ResultWarnings         = "warnings"
	ResultAnalyzerWarnings = "analyzer-warnings"
	ResultTestFailures     = "test-failures"
	ResultBuildErrors      = "build-errors"
	ResultBuildFailed      = "build-failed"
	ResultCheckoutError    = "checkout-error"
	ResultInternalError    = "internal-error"
	ResultCanceled         = "canceled"
	ResultUnknown          = "unknown"
)

// Integration is one run of a bot.
type Integration struct {
	ID          string              `json:"_id"`
	Number      int                 `json:"number"`
	CurrentStep string              `json:"currentStep"`
	Result      string              `json:"result"`
	Summary     *BuildResultSummary `json:"buildResultSummary,omitempty"`
	// Revision is the commit the integration checked out, if known.
	Revision string `json:"-"`
}

// BuildResultSummary holds the counters of a finished integration.
type BuildResultSummary struct {
	ErrorCount           int `json:"errorCount"`
	WarningCount         int `json:"warningCount"`
	AnalyzerWarningCount int `json:"analyzerWarningCount"`
	TestsCount           int `json:"testsCount"`
	TestFailureCount     int `json:"testFailureCount"`
}

// Completed reports whether the integration has finished.
func (i Integration) Completed() bool {
	return i.CurrentStep == StepCompleted
}

// revisionPath finds the checked out commit of the first working copy.
const revisionPath = "revisionBlueprint.DVTSourceControlWorkspaceBlueprintLocationsKey.*.DVTSourceControlLocationRevisionKey"

func decodeIntegration(raw []byte) (Integration, error) {
	var integration Integration
	if err := json.Unmarshal(raw, &integration); err != nil {
		return Integration{}, err
	}
	integration.Revision = gjson.GetBytes(raw, revisionPath).String()
	return integration, nil
}
