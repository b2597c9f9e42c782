package conversation

import "github.com/xaenox/discipline-bot/internal/models"

// State is the dialogue position of one user. Each variant carries only
// the draft fields that are valid in it.
type State interface {
	isState()
	String() string
}

type Idle struct{}

type AwaitingCategory struct{}

type AwaitingDescription struct {
	Category models.Category
}

type AwaitingTime struct {
	Category    models.Category
	Description string
}

type AwaitingDeleteID struct {
	Category models.Category
}

func (Idle) isState()                {}
func (AwaitingCategory) isState()    {}
func (AwaitingDescription) isState() {}
func (AwaitingTime) isState()        {}
func (AwaitingDeleteID) isState()    {}

func (Idle) String() string                { return "idle" }
func (AwaitingCategory) String() string    { return "awaiting_category" }
func (AwaitingDescription) String() string { return "awaiting_description" }
func (AwaitingTime) String() string        { return "awaiting_time" }
func (AwaitingDeleteID) String() string    { return "awaiting_delete_id" }
