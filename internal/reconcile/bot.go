package reconcile

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"github.com/buildasaur/buildasaur/internal/buildtemplate"
	"github.com/buildasaur/buildasaur/internal/ciserver"
	"github.com/buildasaur/buildasaur/internal/workspace"
)

const (
	blueprintVersion = 204
	branchOptions    = 4
	locationBranch   = "DVTSourceControlBranch"
	systemGit        = "com.apple.dt.Xcode.sourcecontrol.Git"
)

var botNamePattern = regexp.MustCompile(`^BuildaBot \[(.+)\] PR #(\d+)$`)

// BotName returns the name of the bot managing pull request number of
// owner/repo.
func BotName(owner, repo string, number int) string {
	return fmt.Sprintf("BuildaBot [%s/%s] PR #%d", owner, repo, number)
}

// pullRequestNumber returns the pull request a bot name refers to, if the bot
// is managed for owner/repo.
func pullRequestNumber(name, owner, repo string) (int, bool) {
	m := botNamePattern.FindStringSubmatch(name)
	if m == nil || m[1] != owner+"/"+repo {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// desiredBot derives the bot configuration for a branch from the template and
// the working copy.
func desiredBot(name string, tpl *buildtemplate.BuildTemplate, meta workspace.Metadata, branch string) ciserver.Bot {
	triggers := make([]map[string]any, 0, len(tpl.Triggers))
	for _, t := range tpl.Triggers {
		triggers = append(triggers, t.Encode())
	}

	deviceIDs := append([]string{}, tpl.TestingDeviceIDs...)

	var filters []ciserver.DeviceFilter
	if tpl.PlatformType != nil {
		filters = append(filters, ciserver.DeviceFilter{
			Platform:   ciserver.Platform{Identifier: string(*tpl.PlatformType)},
			FilterType: int(tpl.DeviceFilter),
		})
	}

	return ciserver.Bot{
		Name: name,
		Type: ciserver.BotTypeIntegration,
		Configuration: ciserver.BotConfiguration{
			SchemeName:                  deref(tpl.Scheme),
			BuiltFromClean:              int(tpl.CleaningPolicy),
			ScheduleType:                int(tpl.Schedule.Type),
			PeriodicScheduleInterval:    int(tpl.Schedule.PeriodicInterval),
			HourOfIntegration:           tpl.Schedule.HourOfIntegration,
			MinutesAfterHourToIntegrate: tpl.Schedule.MinutesAfterHour,
			WeeklyScheduleDay:           int(tpl.Schedule.WeeklyScheduleDay),
			PerformsAnalyzeAction:       deref(tpl.ShouldAnalyze),
			PerformsTestAction:          deref(tpl.ShouldTest),
			PerformsArchiveAction:       deref(tpl.ShouldArchive),
			Triggers:                    triggers,
			DeviceSpecification: ciserver.DeviceSpecification{
				Filters:           filters,
				DeviceIdentifiers: deviceIDs,
			},
			SourceControlBlueprint: blueprint(meta, branch),
		},
	}
}

func blueprint(meta workspace.Metadata, branch string) ciserver.Blueprint {
	wc := meta.WorkingCopyIdentifier()
	remote := meta.URL().String()

	return ciserver.Blueprint{
		// stable per remote and branch, so unchanged bots do not drift
		Identifier:              uuid.NewSHA1(uuid.NameSpaceURL, []byte(remote+"#"+branch)).String(),
		Name:                    meta.ProjectName(),
		Version:                 blueprintVersion,
		RelativePathToProject:   meta.WorkingCopyName() + "/",
		PrimaryRemoteRepository: wc,
		Locations: map[string]ciserver.BlueprintLocation{
			wc: {BranchIdentifier: branch, BranchOptions: branchOptions, LocationType: locationBranch},
		},
		RemoteRepositories: []ciserver.RemoteRepository{
			{URL: remote, System: systemGit, Identifier: wc},
		},
		WorkingCopyPaths:  map[string]string{wc: meta.WorkingCopyName() + "/"},
		WorkingCopyStates: map[string]int{wc: 0},
	}
}

// fingerprint is the part of a bot that buildasaur owns. Two bots with equal
// fingerprints need no update.
type fingerprint struct {
	Scheme    string
	Clean     int
	Schedule  [5]int
	Analyze   bool
	Test      bool
	Archive   bool
	Triggers  []map[string]any
	Filters   []ciserver.DeviceFilter
	DeviceIDs []string
	Branch    string
	Remotes   []string
}

func fingerprintOf(bot ciserver.Bot) ([]byte, error) {
	c := bot.Configuration
	fp := fingerprint{
		Scheme: c.SchemeName,
		Clean:  c.BuiltFromClean,
		Schedule: [5]int{
			c.ScheduleType, c.PeriodicScheduleInterval, c.HourOfIntegration,
			c.MinutesAfterHourToIntegrate, c.WeeklyScheduleDay,
		},
		Analyze:   c.PerformsAnalyzeAction,
		Test:      c.PerformsTestAction,
		Archive:   c.PerformsArchiveAction,
		Triggers:  nonNil(c.Triggers),
		Filters:   nonNil(c.DeviceSpecification.Filters),
		DeviceIDs: nonNil(c.DeviceSpecification.DeviceIdentifiers),
		Branch:    c.SourceControlBlueprint.Branch(),
		Remotes:   []string{},
	}
	for _, r := range c.SourceControlBlueprint.RemoteRepositories {
		fp.Remotes = append(fp.Remotes, r.URL)
	}
	// JSON evens out numeric types of triggers decoded from the server
	return json.Marshal(fp)
}

// drifted reports whether existing differs from desired in anything buildasaur
// manages.
func drifted(existing, desired ciserver.Bot) bool {
	a, errA := fingerprintOf(existing)
	b, errB := fingerprintOf(desired)
	if errA != nil || errB != nil {
		return true
	}
	return string(a) != string(b)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
