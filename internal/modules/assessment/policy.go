package assessment

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

const policyEnv = "GATING_POLICY_YAML"

//go:embed policy.yaml
var policyFS embed.FS

// Policy holds the tunable grading rules.
type Policy struct {
	DefaultPassingScore int  `yaml:"default_passing_score"`
	LenientShortAnswers bool `yaml:"lenient_short_answers"`
}

func DefaultPolicy() Policy {
	return Policy{
		DefaultPassingScore: learning.DefaultPassingScore,
		LenientShortAnswers: true,
	}
}

// LoadPolicy reads the file named by GATING_POLICY_YAML, or the embedded
// default when unset. Keys missing from the file keep their default values.
func LoadPolicy() (Policy, error) {
	data, err := readPolicy()
	if err != nil {
		return Policy{}, fmt.Errorf("read gating policy: %w", err)
	}
	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse gating policy: %w", err)
	}
	if p.DefaultPassingScore < 1 || p.DefaultPassingScore > 100 {
		return Policy{}, fmt.Errorf("default_passing_score must be within 1..100, got %d", p.DefaultPassingScore)
	}
	return p, nil
}

// PassingScore resolves the threshold for lecture.
func (p Policy) PassingScore(lecture learning.Lecture) int {
	return lecture.EffectivePassingScore(p.DefaultPassingScore)
}

func readPolicy() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(policyEnv)); path != "" {
		return os.ReadFile(path)
	}
	return policyFS.ReadFile("policy.yaml")
}
