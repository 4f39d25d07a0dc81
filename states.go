package recorder

// State of a recording session. A session only moves forward, one state at a time,
// except that a failed session jumps to StateClosed once the browser is released.
type State int

const (
	// StateUnstarted before the browser is launched
	StateUnstarted State = iota
	// StateBrowserOpen after the browser is launched
	StateBrowserOpen
	// StatePageNavigated after the page finished loading the url
	StatePageNavigated
	// StateCapturing while the frames are being encoded
	StateCapturing
	// StateStopped after the video file is finalized
	StateStopped
	// StateClosed after the browser is released
	StateClosed
)

var stateNames = map[State]string{
	StateUnstarted:     "unstarted",
	StateBrowserOpen:   "browser-open",
	StatePageNavigated: "page-navigated",
	StateCapturing:     "capturing",
	StateStopped:       "stopped",
	StateClosed:        "closed",
}

// String ...
func (s State) String() string {
	if name, has := stateNames[s]; has {
		return name
	}
	return "unknown"
}

// next reports whether to is the state right after s
func (s State) next(to State) bool {
	return to == s+1
}
