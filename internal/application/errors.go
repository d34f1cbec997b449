package application

import "errors"

var ErrEngineUnavailable = errors.New("engine unavailable")
var ErrNoSources = errors.New("no sources configured")
var ErrHistoryDisabled = errors.New("history not enabled")
