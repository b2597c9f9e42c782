package conversation

import (
	"fmt"
	"strings"

	"github.com/xaenox/discipline-bot/internal/models"
)

type ActionKind int

const (
	ActionStart ActionKind = iota
	ActionShowMenu
	ActionSelectCategory
	ActionAddTask
	ActionViewTasks
	ActionDeleteTask
)

var kindPrefixes = map[ActionKind]string{
	ActionSelectCategory: "category",
	ActionAddTask:        "add",
	ActionViewTasks:      "view",
	ActionDeleteTask:     "delete",
}

// Action is a button press or command. Category is set for the
// category-scoped kinds only.
type Action struct {
	Kind     ActionKind
	Category models.Category
}

func Start() Action    { return Action{Kind: ActionStart} }
func ShowMenu() Action { return Action{Kind: ActionShowMenu} }

func SelectCategory(c models.Category) Action { return Action{Kind: ActionSelectCategory, Category: c} }
func AddTask(c models.Category) Action        { return Action{Kind: ActionAddTask, Category: c} }
func ViewTasks(c models.Category) Action      { return Action{Kind: ActionViewTasks, Category: c} }
func DeleteTask(c models.Category) Action     { return Action{Kind: ActionDeleteTask, Category: c} }

// Tag encodes the action as a compact token suitable for button payloads.
func (a Action) Tag() string {
	switch a.Kind {
	case ActionStart:
		return "start"
	case ActionShowMenu:
		return "menu"
	}
	return kindPrefixes[a.Kind] + "_" + string(a.Category)
}

func (a Action) String() string {
	return a.Tag()
}

// ParseAction decodes a token produced by Tag.
func ParseAction(tag string) (Action, error) {
	switch tag {
	case "start":
		return Start(), nil
	case "menu":
		return ShowMenu(), nil
	}

	prefix, rest, ok := strings.Cut(tag, "_")
	if !ok {
		return Action{}, fmt.Errorf("unknown action %q", tag)
	}
	for kind, p := range kindPrefixes {
		if p != prefix {
			continue
		}
		category, err := models.ParseCategory(rest)
		if err != nil {
			return Action{}, fmt.Errorf("action %q: %w", tag, err)
		}
		return Action{Kind: kind, Category: category}, nil
	}
	return Action{}, fmt.Errorf("unknown action %q", tag)
}
