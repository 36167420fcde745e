package panels

import "github.com/1broseidon/viewwall/internal/viewer"

const defaultErrorMessage = "Something went wrong loading this content."

// ErrorPanel explains why a piece of content could not be shown.
type ErrorPanel struct {
	*viewer.Base
}

func NewErrorPanel(req viewer.Request, env viewer.Env) (viewer.Viewer, error) {
	e := &ErrorPanel{}
	e.Base = viewer.NewBase(env, viewer.Spec{Type: viewer.TypeError, MaxInstances: MaxErrorPanels, DefaultSize: errorSize}, e)
	fixSize(e.Base, errorSize)
	return e, nil
}

func (e *ErrorPanel) Message() string {
	if msg := e.Content().Prop("error"); msg != "" {
		return msg
	}
	return defaultErrorMessage
}

func (e *ErrorPanel) Path() string      { return e.Content().Prop("media_path") }
func (e *ErrorPanel) MediaName() string { return e.Content().Prop("media_name") }
