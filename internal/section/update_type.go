package section

import "math"

// UpdateType is the kind of rebuild a section is waiting for. Higher values
// take priority.
type UpdateType int

const (
	UpdateNone UpdateType = iota
	UpdateRebuild
	UpdateInitialBuild
	UpdateImportantRebuild
)

// UpdateTypes lists the kinds that own a rebuild queue, lowest priority first.
var UpdateTypes = [...]UpdateType{UpdateRebuild, UpdateInitialBuild, UpdateImportantRebuild}

// rebuildQueueCap bounds how many ordinary rebuilds one traversal collects.
const rebuildQueueCap = 32

// MaximumQueueSize is the number of sections a traversal may enqueue for
// this kind per frame. Only ordinary rebuilds are capped.
func (t UpdateType) MaximumQueueSize() int {
	if t == UpdateRebuild {
		return rebuildQueueCap
	}
	return math.MaxInt
}

// IsImportant reports whether builds of this kind are always awaited within
// the frame that scheduled them.
func (t UpdateType) IsImportant() bool {
	return t == UpdateImportantRebuild
}

func (t UpdateType) String() string {
	switch t {
	case UpdateNone:
		return "none"
	case UpdateRebuild:
		return "rebuild"
	case UpdateInitialBuild:
		return "initial_build"
	case UpdateImportantRebuild:
		return "important_rebuild"
	default:
		return "unknown"
	}
}
