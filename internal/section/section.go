package section

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"sectionrender/internal/world"
)

// Cancellable is an in-flight build that can be abandoned.
type Cancellable interface {
	Cancel()
}

// Bounds is the axis-aligned box of a section in world space.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// Section is the render state of one 16³ cell of the world. It is owned by
// the frame goroutine; build workers only see snapshots and IDs.
type Section struct {
	id     uuid.UUID
	pos    world.SectionPos
	bounds Bounds

	data *RenderData

	pendingUpdate  UpdateType
	buildSubmitted bool

	rebuild          Cancellable
	lastRebuildFrame int

	disposed bool

	regionID int64
	localID  int

	lastTick int
}

// New creates an unbuilt section at the given position.
func New(pos world.SectionPos) *Section {
	origin := pos.Origin()
	lo := mgl32.Vec3{float32(origin.X), float32(origin.Y), float32(origin.Z)}
	return &Section{
		id:     uuid.New(),
		pos:    pos,
		bounds: Bounds{Min: lo, Max: lo.Add(mgl32.Vec3{world.SectionSize, world.SectionSize, world.SectionSize})},
		data:   AbsentRenderData,
	}
}

// ID distinguishes this section from any other section ever loaded at the
// same position.
func (s *Section) ID() uuid.UUID { return s.id }

func (s *Section) Pos() world.SectionPos { return s.pos }

func (s *Section) Bounds() Bounds { return s.bounds }

func (s *Section) Data() *RenderData { return s.data }

// SetData publishes the result of a finished build.
func (s *Section) SetData(d *RenderData) {
	if d == nil {
		d = EmptyRenderData
	}
	s.data = d
}

func (s *Section) HasFlag(f Flags) bool {
	return s.data.HasFlag(f)
}

// IsBuilt reports whether any build result has been applied.
func (s *Section) IsBuilt() bool {
	return s.data != AbsentRenderData
}

func (s *Section) PendingUpdate() UpdateType { return s.pendingUpdate }

// MarkForUpdate requests a build of the given kind. A pending request is only
// ever promoted to a higher kind. A new request always allows another
// submission, even while an older build is still running.
func (s *Section) MarkForUpdate(t UpdateType) {
	if t > s.pendingUpdate {
		s.pendingUpdate = t
	}
	s.buildSubmitted = false
}

// NeedsSubmit reports whether a pending request has not been handed to the
// builder yet.
func (s *Section) NeedsSubmit() bool {
	return s.pendingUpdate != UpdateNone && !s.buildSubmitted
}

// SetRebuildFuture records the build submitted at frame.
func (s *Section) SetRebuildFuture(f Cancellable, frame int) {
	s.rebuild = f
	s.lastRebuildFrame = frame
	s.buildSubmitted = true
}

func (s *Section) LastRebuildFrame() int { return s.lastRebuildFrame }

// CancelRebuild abandons the in-flight build, if any.
func (s *Section) CancelRebuild() {
	if s.rebuild != nil {
		s.rebuild.Cancel()
		s.rebuild = nil
	}
}

// FinishRebuild clears the pending request unless a newer one arrived after
// the finished build was submitted.
func (s *Section) FinishRebuild() {
	if s.buildSubmitted {
		s.pendingUpdate = UpdateNone
		s.buildSubmitted = false
	}
	s.rebuild = nil
}

func (s *Section) Dispose() {
	s.disposed = true
}

func (s *Section) IsDisposed() bool { return s.disposed }

// SetRegion records the region slot the section's geometry lives in.
func (s *Section) SetRegion(regionID int64, localID int) {
	s.regionID = regionID
	s.localID = localID
}

func (s *Section) RegionID() int64 { return s.regionID }

func (s *Section) LocalID() int { return s.localID }

// Tick advances the section's animation clock and returns the sprites that
// must keep animating this frame.
func (s *Section) Tick() []string {
	s.lastTick++
	return s.data.AnimatedSprites
}

func (s *Section) String() string {
	return "RenderSection at chunk " + s.pos.String()
}
