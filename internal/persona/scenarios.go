package persona

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// FamilyScenario describes a benign caller: who they are and why they call.
// The fields are fixed at simulation start and never change mid-call.
type FamilyScenario struct {
	Relationship string `yaml:"relationship" json:"relationship"`
	CallerName   string `yaml:"caller_name" json:"caller_name"`
	CallReason   string `yaml:"call_reason" json:"call_reason"`
}

// PresetScenarios are the built-in family scenarios used when no scenario
// file or override is supplied.
var PresetScenarios = []FamilyScenario{
	{Relationship: "grandson", CallerName: "Tommy", CallReason: "checking in and saying hi"},
	{Relationship: "granddaughter", CallerName: "Sarah", CallReason: "planning a visit next weekend"},
	{Relationship: "daughter", CallerName: "Linda", CallReason: "making sure you took your medicine"},
	{Relationship: "son", CallerName: "Michael", CallReason: "telling you about the kids' soccer game"},
	{Relationship: "nephew", CallerName: "David", CallReason: "wishing you happy birthday"},
	{Relationship: "niece", CallerName: "Emily", CallReason: "inviting you to Thanksgiving dinner"},
}

// LoadScenarios reads family scenarios from a YAML file. The file holds a
// list of scenario entries; every entry must be complete.
func LoadScenarios(path string) ([]FamilyScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %v", err)
	}

	var scenarios []FamilyScenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %v", path, err)
	}

	for i, s := range scenarios {
		if s.Relationship == "" || s.CallerName == "" || s.CallReason == "" {
			return nil, fmt.Errorf("scenario %d in %s is incomplete", i, path)
		}
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("scenario file %s contains no scenarios", path)
	}

	return scenarios, nil
}

// RandomScenario picks one scenario from the list, or from the presets when
// the list is empty. All randomness happens here, upstream of the simulation.
func RandomScenario(scenarios []FamilyScenario) FamilyScenario {
	if len(scenarios) == 0 {
		scenarios = PresetScenarios
	}
	return scenarios[rand.Intn(len(scenarios))]
}
