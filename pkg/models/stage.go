package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Stage is a discrete construction-progress category. The ordinal order
// matters: Foundation < Mounting < Installation.
type Stage int

const (
	StageFoundation Stage = iota
	StageMounting
	StageInstallation
)

var stageNames = [...]string{"foundation", "mounting", "installation"}

// String returns the lowercase stage name.
func (s Stage) String() string {
	if s < StageFoundation || s > StageInstallation {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Display returns the capitalized stage name used in reports.
func (s Stage) Display() string {
	name := s.String()
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Ordinal returns the numeric position of the stage in the construction
// sequence, starting at 0 for Foundation.
func (s Stage) Ordinal() int {
	return int(s)
}

// ParseStage converts a stage name (case-insensitive) into a Stage.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "foundation":
		return StageFoundation, nil
	case "mounting":
		return StageMounting, nil
	case "installation":
		return StageInstallation, nil
	}
	return StageFoundation, fmt.Errorf("unknown stage %q", name)
}

// MarshalJSON encodes the stage as its lowercase name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a stage from its name.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStage(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
