package buildtemplate

// TriggerType is the kind of action a trigger performs.
type TriggerType int

const (
	TriggerTypeScript TriggerType = iota + 1
	TriggerTypeEmail
)

// TriggerPhase is when a trigger runs relative to the integration.
type TriggerPhase int

const (
	TriggerPhasePrebuild TriggerPhase = iota + 1
	TriggerPhasePostbuild
)

const (
	keyTriggerName       = "name"
	keyTriggerType       = "type"
	keyTriggerPhase      = "phase"
	keyTriggerScript     = "scriptBody"
	keyTriggerConditions = "conditions"
	keyTriggerEmail      = "emailConfiguration"

	keyOnAnalyzerWarnings = "onAnalyzerWarnings"
	keyOnBuildErrors      = "onBuildErrors"
	keyOnFailingTests     = "onFailingTests"
	keyOnSuccess          = "onSuccess"
	keyOnWarnings         = "onWarnings"

	keyAdditionalRecipients  = "additionalRecipients"
	keyEmailCommitters       = "emailCommitters"
	keyIncludeCommitMessages = "includeCommitMessages"
	keyIncludeIssueDetails   = "includeIssueDetails"
)

// Trigger is a pre- or post-build hook. Triggers run in slice order.
type Trigger struct {
	Name       string
	Type       TriggerType
	Phase      TriggerPhase
	ScriptBody string
	// Conditions only apply to post-build triggers.
	Conditions *TriggerConditions
	Email      *EmailConfiguration
}

// TriggerConditions restricts a post-build trigger to certain outcomes.
type TriggerConditions struct {
	OnAnalyzerWarnings bool
	OnBuildErrors      bool
	OnFailingTests     bool
	OnSuccess          bool
	OnWarnings         bool
}

// EmailConfiguration configures an email trigger.
type EmailConfiguration struct {
	AdditionalRecipients  []string
	EmailCommitters       bool
	IncludeCommitMessages bool
	IncludeIssueDetails   bool
}

// Encode returns the dictionary form of t.
func (t Trigger) Encode() map[string]any {
	dict := map[string]any{
		keyTriggerName:   t.Name,
		keyTriggerType:   int(t.Type),
		keyTriggerPhase:  int(t.Phase),
		keyTriggerScript: t.ScriptBody,
	}
	if c := t.Conditions; c != nil {
		dict[keyTriggerConditions] = map[string]any{
			keyOnAnalyzerWarnings: c.OnAnalyzerWarnings,
			keyOnBuildErrors:      c.OnBuildErrors,
			keyOnFailingTests:     c.OnFailingTests,
			keyOnSuccess:          c.OnSuccess,
			keyOnWarnings:         c.OnWarnings,
		}
	}
	if e := t.Email; e != nil {
		email := map[string]any{
			keyEmailCommitters:       e.EmailCommitters,
			keyIncludeCommitMessages: e.IncludeCommitMessages,
			keyIncludeIssueDetails:   e.IncludeIssueDetails,
		}
		putSlice(email, keyAdditionalRecipients, e.AdditionalRecipients)
		dict[keyTriggerEmail] = email
	}
	return dict
}

// decodeTrigger reads a trigger dictionary. Missing keys keep their zero
// values; ok is false only when v is not a dictionary.
func decodeTrigger(v any) (Trigger, bool) {
	dict, ok := v.(map[string]any)
	if !ok {
		return Trigger{}, false
	}

	t := Trigger{
		Name:       stringValue(dict[keyTriggerName]),
		ScriptBody: stringValue(dict[keyTriggerScript]),
	}
	if n, ok := intValue(dict[keyTriggerType]); ok {
		t.Type = TriggerType(n)
	}
	if n, ok := intValue(dict[keyTriggerPhase]); ok {
		t.Phase = TriggerPhase(n)
	}

	if c, ok := dict[keyTriggerConditions].(map[string]any); ok {
		t.Conditions = &TriggerConditions{
			OnAnalyzerWarnings: boolValue(c[keyOnAnalyzerWarnings]),
			OnBuildErrors:      boolValue(c[keyOnBuildErrors]),
			OnFailingTests:     boolValue(c[keyOnFailingTests]),
			OnSuccess:          boolValue(c[keyOnSuccess]),
			OnWarnings:         boolValue(c[keyOnWarnings]),
		}
	}

	if e, ok := dict[keyTriggerEmail].(map[string]any); ok {
		t.Email = &EmailConfiguration{
			AdditionalRecipients:  stringSlice(e[keyAdditionalRecipients]),
			EmailCommitters:       boolValue(e[keyEmailCommitters]),
			IncludeCommitMessages: boolValue(e[keyIncludeCommitMessages]),
			IncludeIssueDetails:   boolValue(e[keyIncludeIssueDetails]),
		}
	}

	return t, true
}
