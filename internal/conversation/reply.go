package conversation

import (
	"fmt"
	"strings"

	"github.com/xaenox/discipline-bot/internal/models"
)

type Button struct {
	Label  string
	Action Action
}

// Menu is a grid of buttons, one slice per row.
type Menu [][]Button

// Reply is one outbound message. A nil Menu sends plain text.
type Reply struct {
	Text string
	Menu Menu
}

const (
	textChooseCategory   = "Choose a category:"
	textEnterDescription = "Enter the task description:"
	textEnterTime        = "Enter the time for the task (e.g. 14:00):"
	textEnterDeleteID    = "Enter the ID of the task to delete:"
	textInvalidID        = "Please enter a valid task number (an integer)."
	textUseMenu          = "Use the menu to choose a category and an action."
	textTryAgain         = "⚠️ Something went wrong while saving your data. Please try again."
)

func categoryMenu() Menu {
	menu := make(Menu, 0, len(models.Categories))
	for _, c := range models.Categories {
		menu = append(menu, []Button{{Label: c.Label(), Action: SelectCategory(c)}})
	}
	return menu
}

func categoryActionsMenu(c models.Category) Menu {
	return Menu{
		{
			{Label: "Add task", Action: AddTask(c)},
			{Label: "View all", Action: ViewTasks(c)},
		},
		{
			{Label: "Delete task", Action: DeleteTask(c)},
		},
	}
}

func menuButton() Menu {
	return Menu{{{Label: "Menu", Action: ShowMenu()}}}
}

func withMenuButton(text string) Reply {
	return Reply{Text: text, Menu: menuButton()}
}

func categorySelectedText(c models.Category) string {
	return fmt.Sprintf("Selected category: %s", c.Label())
}

func taskAddedText(description string, c models.Category, scheduledTime string) string {
	return fmt.Sprintf("Task '%s' added to category '%s' at %s!", description, c.Label(), scheduledTime)
}

func taskListText(c models.Category, tasks []models.Task) string {
	if len(tasks) == 0 {
		return fmt.Sprintf("No tasks in category '%s' yet.", c.Label())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tasks in category '%s':\n", c.Label())
	for _, t := range tasks {
		fmt.Fprintf(&sb, "ID: %d - %s (%s)\n", t.ID, t.Description, t.ScheduledTime)
	}
	return sb.String()
}

func taskDeletedText(id int64) string {
	return fmt.Sprintf("Task with ID %d deleted!", id)
}

func taskNotFoundText(id int64, c models.Category) string {
	return fmt.Sprintf("Task with ID %d not found in category '%s'.", id, c.Label())
}
