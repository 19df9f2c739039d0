// Package buildtemplate models the desired configuration of a CI bot: the
// scheme to build, when to integrate, which phases to run and on which devices.
package buildtemplate

import (
	"github.com/google/uuid"
)

// DefaultName is the name given to freshly created templates.
const DefaultName = "New Build Template"

// BuildTemplate describes what a correctly configured bot looks like.
//
// Pointer fields are optional: nil means unset, which is distinct from the
// zero value and survives Encode/Decode as absence.
type BuildTemplate struct {
	// ID is generated once by New and never regenerated.
	ID               string
	ProjectName      *string
	Name             *string
	Scheme           *string
	Schedule         Schedule
	CleaningPolicy   CleaningPolicy
	Triggers         []Trigger
	ShouldAnalyze    *bool
	ShouldTest       *bool
	ShouldArchive    *bool
	TestingDeviceIDs []string
	DeviceFilter     DeviceFilter
	PlatformType     *PlatformType
}

// New returns a template for projectName with a fresh ID and conservative
// defaults. The scheme is left unset, so the result does not validate until
// one is chosen.
func New(projectName string) *BuildTemplate {
	return &BuildTemplate{
		ID:               uuid.NewString(),
		ProjectName:      ptr(projectName),
		Name:             ptr(DefaultName),
		Schedule:         ManualSchedule(),
		CleaningPolicy:   CleaningPolicyNever,
		Triggers:         []Trigger{},
		ShouldAnalyze:    ptr(false),
		ShouldTest:       ptr(false),
		ShouldArchive:    ptr(false),
		TestingDeviceIDs: []string{},
		DeviceFilter:     DeviceFilterAllAvailableDevicesAndSimulators,
	}
}

// Validate reports whether the template is usable: it needs an ID, a name and
// a scheme. Nothing else is checked, so partially edited templates can still be
// saved.
func (t *BuildTemplate) Validate() bool {
	return t.ID != "" && t.Name != nil && t.Scheme != nil
}

// DisplayName returns the name, or the ID when the template has no name.
func (t *BuildTemplate) DisplayName() string {
	if t.Name != nil {
		return *t.Name
	}
	return t.ID
}

// BelongsTo reports whether the template should be offered to projectName.
// Templates with no project association belong to every project.
func (t *BuildTemplate) BelongsTo(projectName string) bool {
	return t.ProjectName == nil || *t.ProjectName == projectName
}

func ptr[T any](v T) *T {
	return &v
}
