package domain

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Anchor names the reference point a step's offset counts from.
type Anchor string

const (
	// AnchorEntered offsets from the moment the user entered the sequence.
	AnchorEntered Anchor = "entered"
	// AnchorFirstDigest offsets from the user's first sent digest. Steps on
	// this anchor stay blocked until that milestone exists.
	AnchorFirstDigest Anchor = "first_digest"
)

// Offset is a step delay that also accepts day-granularity values ("3d") on
// top of the usual duration syntax.
type Offset time.Duration

func (o *Offset) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	d, err := parseOffset(raw)
	if err != nil {
		return err
	}
	*o = Offset(d)
	return nil
}

func (o Offset) Duration() time.Duration { return time.Duration(o) }

func parseOffset(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid day offset %q", raw)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", raw, err)
	}
	return d, nil
}

// Step is one email in a sequence. Steps are 1-based in state rows; the
// slice index is step-1.
type Step struct {
	ContentID string `yaml:"content_id"`
	Subject   string `yaml:"subject"`
	Body      string `yaml:"body"`
	Anchor    Anchor `yaml:"anchor"`
	Offset    Offset `yaml:"offset"`
}

// Sequence is a named drip campaign.
type Sequence struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step returns the 1-based step, or nil past the end of the sequence.
func (s *Sequence) Step(n int) *Step {
	if n < 1 || n > len(s.Steps) {
		return nil
	}
	return &s.Steps[n-1]
}

// Definitions holds every known sequence keyed by name.
type Definitions map[string]*Sequence

type definitionsFile struct {
	Sequences []*Sequence `yaml:"sequences"`
}

// Built-in sequence names.
const (
	SequenceWelcome    = "welcome"
	SequenceOnboarding = "onboarding"
	SequenceUpgrade    = "upgrade"
)

// DefaultDefinitions returns the built-in sequences used when no definitions
// file is configured.
func DefaultDefinitions() Definitions {
	return Definitions{
		SequenceWelcome: {
			Name: SequenceWelcome,
			Steps: []Step{
				{ContentID: "welcome-1", Subject: "Welcome to Resurface", Body: "Connect your notes and your first digest is on its way.", Anchor: AnchorEntered, Offset: 0},
				{ContentID: "welcome-2", Subject: "Still setting things up?", Body: "Connecting a source takes about a minute. Here is how.", Anchor: AnchorEntered, Offset: Offset(2 * 24 * time.Hour)},
				{ContentID: "welcome-3", Subject: "Your notes are waiting", Body: "Nothing resurfaces until a source is connected.", Anchor: AnchorEntered, Offset: Offset(5 * 24 * time.Hour)},
			},
		},
		SequenceOnboarding: {
			Name: SequenceOnboarding,
			Steps: []Step{
				{ContentID: "onboarding-1", Subject: "Your first digest is out", Body: "Here is what to expect from your digests going forward.", Anchor: AnchorFirstDigest, Offset: Offset(24 * time.Hour)},
				{ContentID: "onboarding-2", Subject: "Tune your schedule", Body: "Pick the hour and cadence that fit your week.", Anchor: AnchorFirstDigest, Offset: Offset(4 * 24 * time.Hour)},
				{ContentID: "onboarding-3", Subject: "Get more out of Resurface", Body: "Scopes, priorities, and other ways to shape what comes back.", Anchor: AnchorFirstDigest, Offset: Offset(10 * 24 * time.Hour)},
			},
		},
		SequenceUpgrade: {
			Name: SequenceUpgrade,
			Steps: []Step{
				{ContentID: "upgrade-1", Subject: "You are getting the hang of this", Body: "Four digests in. Pro unlocks daily cadence and custom intervals.", Anchor: AnchorEntered, Offset: 0},
				{ContentID: "upgrade-2", Subject: "Daily digests, if you want them", Body: "Free accounts ship weekly. Pro lets you choose.", Anchor: AnchorEntered, Offset: Offset(7 * 24 * time.Hour)},
			},
		},
	}
}

// LoadDefinitions reads sequences from the given YAML file, or returns the
// built-in set when path is empty.
func LoadDefinitions(path string) (Definitions, error) {
	if path == "" {
		return DefaultDefinitions(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sequences file: %w", err)
	}

	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sequences file: %w", err)
	}

	defs := make(Definitions, len(file.Sequences))
	for _, seq := range file.Sequences {
		if err := validateSequence(seq); err != nil {
			return nil, err
		}
		if _, exists := defs[seq.Name]; exists {
			return nil, fmt.Errorf("duplicate sequence %q", seq.Name)
		}
		defs[seq.Name] = seq
	}
	return defs, nil
}

func validateSequence(seq *Sequence) error {
	if seq.Name == "" {
		return fmt.Errorf("sequence missing name")
	}
	if len(seq.Steps) == 0 {
		return fmt.Errorf("sequence %q has no steps", seq.Name)
	}
	for i, step := range seq.Steps {
		if step.ContentID == "" {
			return fmt.Errorf("sequence %q step %d missing content_id", seq.Name, i+1)
		}
		if step.Anchor != AnchorEntered && step.Anchor != AnchorFirstDigest {
			return fmt.Errorf("sequence %q step %d has unknown anchor %q", seq.Name, i+1, step.Anchor)
		}
		if step.Offset < 0 {
			return fmt.Errorf("sequence %q step %d has negative offset", seq.Name, i+1)
		}
	}
	return nil
}
