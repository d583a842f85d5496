package models

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

type Action int

const (
	ActionKeep Action = iota
	ActionDelete
)

func (a Action) String() string {
	if a == ActionDelete {
		return "delete"
	}
	return "keep"
}

func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep":
		return ActionKeep, nil
	case "delete":
		return ActionDelete, nil
	}
	return ActionKeep, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

type SwipeDecision struct {
	AssetID string `json:"asset_id"`
	Action  Action `json:"action"`
}
