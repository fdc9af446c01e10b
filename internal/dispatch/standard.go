package dispatch

import "github.com/takashialpha/motmot/internal/config"

// Default standard responses (spec.md §4.5), used whenever a ServerSpec
// does not override them via config.StandardResponses.
var (
	defaultNotFound = config.Action{
		Kind: config.ActionText,
		Text: &config.TextAction{
			Body:        "Not Found",
			ContentType: "text/plain; charset=utf-8",
			Status:      404,
		},
	}
	defaultMethodNotAllowed = config.Action{
		Kind: config.ActionText,
		Text: &config.TextAction{
			Body:        "Method Not Allowed",
			ContentType: "text/plain; charset=utf-8",
			Status:      405,
		},
	}
	defaultInternalError = config.Action{
		Kind: config.ActionText,
		Text: &config.TextAction{
			Body:        "Internal Server Error",
			ContentType: "text/plain; charset=utf-8",
			Status:      500,
		},
	}
)

func notFoundAction(override *config.StandardResponses) config.Action {
	if override != nil && override.NotFound != nil {
		return *override.NotFound
	}
	return defaultNotFound
}

func methodNotAllowedAction(override *config.StandardResponses) config.Action {
	if override != nil && override.MethodNotAllowed != nil {
		return *override.MethodNotAllowed
	}
	return defaultMethodNotAllowed
}

func internalErrorAction(override *config.StandardResponses) config.Action {
	if override != nil && override.InternalError != nil {
		return *override.InternalError
	}
	return defaultInternalError
}
