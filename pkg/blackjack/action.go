package blackjack

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActionType is something that happens to a hand
type ActionType int

// ActionType constants
// The numeric values are stored in settlement logs and must not be reordered.
const (
	ActionDeal ActionType = iota
	ActionHit
	ActionStand
	ActionDoubleDown
	ActionSplit
	ActionInsurance
)

func (a ActionType) String() string {
	switch a {
	case ActionDeal:
		return "Deal"
	case ActionHit:
		return "Hit"
	case ActionStand:
		return "Stand"
	case ActionDoubleDown:
		return "Double Down"
	case ActionSplit:
		return "Split"
	case ActionInsurance:
		return "Insurance"
	}

	panic(fmt.Sprintf("invalid action: %d", a))
}

// MarshalJSON encodes the JSON
func (a ActionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   int(a),
		Name: a.String(),
	})
}

// UnmarshalJSON accepts either the numeric ID or the {id, name} object
func (a *ActionType) UnmarshalJSON(b []byte) error {
	var id int
	if err := json.Unmarshal(b, &id); err != nil {
		var obj struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}

		id = obj.ID
	}

	if id < int(ActionDeal) || id > int(ActionInsurance) {
		return fmt.Errorf("invalid action: %d", id)
	}

	*a = ActionType(id)
	return nil
}

// ActionTypeFromString returns an action from its ID or name ("hit", "double-down", ...)
func ActionTypeFromString(action string) (ActionType, error) {
	if id, err := strconv.Atoi(action); err == nil {
		if id >= int(ActionDeal) && id <= int(ActionInsurance) {
			return ActionType(id), nil
		}

		return -1, fmt.Errorf("invalid action: %s", action)
	}

	switch strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(action)) {
	case "hit":
		return ActionHit, nil
	case "stand":
		return ActionStand, nil
	case "doubledown", "double":
		return ActionDoubleDown, nil
	case "split":
		return ActionSplit, nil
	case "insurance":
		return ActionInsurance, nil
	}

	return -1, fmt.Errorf("invalid action: %s", action)
}

// draws returns how many cards the action takes from the shoe
func (a ActionType) draws() int {
	switch a {
	case ActionDeal, ActionHit, ActionDoubleDown:
		return 1
	case ActionSplit:
		return 2
	}

	return 0
}

// Action is a record of something that happened to a hand
type Action struct {
	Type      ActionType `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	// DrawIndex is the shoe position consumed by the action, only set when a card was drawn
	DrawIndex *int `json:"drawIndex,omitempty"`
}

func newAction(actionType ActionType, at time.Time) Action {
	return Action{
		Type:      actionType,
		Timestamp: at,
	}
}

func newDrawAction(actionType ActionType, at time.Time, drawIndex int) Action {
	idx := drawIndex
	return Action{
		Type:      actionType,
		Timestamp: at,
		DrawIndex: &idx,
	}
}
