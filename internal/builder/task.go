package builder

import (
	"context"

	"github.com/google/uuid"

	"sectionrender/internal/section"
	"sectionrender/internal/world"
)

// Task builds the render data of one section. A task only reads the
// snapshot it was created with and must return promptly once ctx is done.
type Task interface {
	Execute(ctx context.Context) (*Result, error)
}

// Result is the output of a finished task.
type Result struct {
	SectionID uuid.UUID
	Pos       world.SectionPos
	// Frame is the frame the task was submitted in.
	Frame  int
	Data   *section.RenderData
	Meshes [section.PassCount]*section.Mesh

	release func()
}

// NewResult creates a result. release, when not nil, returns the staging
// memory held by the meshes and is called once by Release.
func NewResult(id uuid.UUID, pos world.SectionPos, frame int, data *section.RenderData, release func()) *Result {
	return &Result{
		SectionID: id,
		Pos:       pos,
		Frame:     frame,
		Data:      data,
		release:   release,
	}
}

// Release frees the staging memory of the result. The meshes must not be
// used afterwards.
func (r *Result) Release() {
	if r.release != nil {
		r.release()
		r.release = nil
	}
	r.Meshes = [section.PassCount]*section.Mesh{}
}
