package model

import (
	"gorm.io/datatypes"
)

// TestCase is immutable once part of a saved project.
type TestCase struct {
	Name           string `json:"name"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	Explanation    string `json:"explanation"`
}

// Project is an AI-generated project specification. OwnerID is 0 under the
// local file store, which has no identity scope.
// swagger:model Project
type Project struct {
	UUIDBase
	OwnerID                   uint                          `gorm:"index" json:"ownerId,omitempty"`
	Title                     string                        `gorm:"size:255;not null" json:"title"`
	Description               string                        `gorm:"type:text" json:"description"`
	Objective                 string                        `gorm:"type:text" json:"objective"`
	InputFormat               string                        `gorm:"type:text" json:"inputFormat"`
	OutputFormat              string                        `gorm:"type:text" json:"outputFormat"`
	EdgeCases                 datatypes.JSONSlice[string]   `json:"edgeCases"`
	FunctionalRequirements    datatypes.JSONSlice[string]   `json:"functionalRequirements"`
	NonFunctionalRequirements datatypes.JSONSlice[string]   `json:"nonFunctionalRequirements"`
	TechStackRecommendation   string                        `gorm:"type:text" json:"techStackRecommendation"`
	TestCases                 datatypes.JSONSlice[TestCase] `json:"testCases"`
}

func (Project) TableName() string {
	return "projects"
}

// UserPreferences is the generation request payload. Never persisted
// standalone.
type UserPreferences struct {
	Level    Difficulty `json:"level" binding:"required"`
	Language string     `json:"language" binding:"required"`
	Concepts []string   `json:"concepts"`
}
