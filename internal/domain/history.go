package domain

import (
	"encoding/json"
	"time"
)

// ModuleType names the themed tool that produced a history entry.
type ModuleType string

const (
	ModuleCreative     ModuleType = "creative"
	ModuleProfessional ModuleType = "professional"
	ModuleCareer       ModuleType = "career"
	ModuleHealth       ModuleType = "health"
	ModuleAutomation   ModuleType = "automation"
	ModuleGeneral      ModuleType = "general"
)

// HistoryItem is one logged request/response pair.
type HistoryItem struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	ModuleType ModuleType      `json:"module_type"`
	InputData  json.RawMessage `json:"input_data"`
	OutputData json.RawMessage `json:"output_data"`
	CreatedAt  time.Time       `json:"created_at"`
}
