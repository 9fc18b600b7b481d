package minecraft

import "errors"

var ErrNoInstance = errors.New("no minecraft instance found, run this command inside a MultiMC instance or the .minecraft directory")
var ErrNeverLaunched = errors.New("you need to launch minecraft once")
var ErrModsDirNotFound = errors.New("the MultiMC instance has no minecraft directory")
