package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moyoez/claimdesk/claim"
	"github.com/moyoez/claimdesk/metrics"
	"github.com/moyoez/claimdesk/preview"
	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/types"
)

const (
	StepUpload  = "upload"
	StepResults = "results"
)

// Notifier receives every session event.
type Notifier interface {
	Notify(n *types.Notification)
}

type Options struct {
	ThumbnailSize  int
	PreviewWorkers int
	Sequencer      claim.Options
	Notifier       Notifier
}

// Session owns both selections, their previews, the error banner and the
// submission sequencer for one claim form.
type Session struct {
	id       string
	created  time.Time
	notifier Notifier
	renderer *preview.Renderer
	seq      *claim.Sequencer

	mu     sync.Mutex
	label  *Selection
	damage *Selection
	banner string
}

// SlotView is the public state of one slot.
type SlotView struct {
	Slot        types.Slot           `json:"slot"`
	Files       []types.MediaFile    `json:"files"`
	Summary     string               `json:"summary"`
	SingleVideo bool                 `json:"singleVideo"`
	Previews    []preview.Descriptor `json:"previews"`
}

// View is a point-in-time copy of the whole session.
type View struct {
	ID      string                `json:"id"`
	Label   SlotView              `json:"label"`
	Damage  SlotView              `json:"damage"`
	Ready   bool                  `json:"ready"`
	Step    string                `json:"step"`
	State   types.SubmissionState `json:"state"`
	Banner  string                `json:"banner,omitempty"`
	Outcome *types.Outcome        `json:"outcome,omitempty"`
}

func NewSession(id string, backend claim.Backend, opts Options) *Session {
	if id == "" {
		id = tool.GenerateRandomUUID()
	}
	s := &Session{
		id:       id,
		created:  time.Now(),
		notifier: opts.Notifier,
		seq:      claim.NewSequencer(backend, opts.Sequencer),
		label:    NewSelection(types.SlotLabel),
		damage:   NewSelection(types.SlotDamage),
	}
	s.renderer = preview.NewRenderer(preview.Options{
		ThumbnailSize: opts.ThumbnailSize,
		Workers:       opts.PreviewWorkers,
		MediaURL: func(slot types.Slot, f types.MediaFile) string {
			return tool.BuildMediaURL(s.id, string(slot), f.Name)
		},
		OnUpdate: s.previewResolved,
	})
	s.seq.OnTransition(s.stateChanged)
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Created() time.Time { return s.created }

func (s *Session) selection(slot types.Slot) (*Selection, error) {
	switch slot {
	case types.SlotLabel:
		return s.label, nil
	case types.SlotDamage:
		return s.damage, nil
	default:
		return nil, fmt.Errorf("unknown slot %q", slot)
	}
}

// AddFiles validates batch against the slot and merges it when accepted.
// Rejections leave the selection untouched and raise the error banner.
func (s *Session) AddFiles(slot types.Slot, batch []types.MediaFile) (SlotView, error) {
	s.mu.Lock()
	sel, err := s.selection(slot)
	if err != nil {
		s.mu.Unlock()
		return SlotView{}, err
	}
	if err := Validate(slot, batch, sel.Files()); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			s.banner = ve.Message
			view := s.slotViewLocked(sel)
			s.mu.Unlock()
			metrics.ValidationRejected(string(slot), reasonLabel(ve.Reason))
			tool.DefaultLogger.Warnf("[Intake] %s rejected: %s", slot, ve.Message)
			s.notify(types.NotifyTypeSelectionRejected, "Upload rejected", ve.Message, map[string]any{
				"slot":  slot,
				"files": ve.Files,
			})
			return view, err
		}
		s.mu.Unlock()
		return SlotView{}, err
	}
	added := sel.Add(batch)
	s.renderer.Render(slot, sel.Files())
	view := s.slotViewLocked(sel)
	ready := s.readyLocked()
	s.mu.Unlock()

	tool.DefaultLogger.Infof("[Intake] %s: %d file(s) added, %d selected", slot, added, view.count())
	s.selectionChanged(view, ready)
	return view, nil
}

// RemoveFile drops the first file named name from slot.
func (s *Session) RemoveFile(slot types.Slot, name string) (SlotView, error) {
	s.mu.Lock()
	sel, err := s.selection(slot)
	if err != nil {
		s.mu.Unlock()
		return SlotView{}, err
	}
	if err := sel.Remove(name); err != nil {
		s.mu.Unlock()
		return SlotView{}, err
	}
	s.renderer.Render(slot, sel.Files())
	view := s.slotViewLocked(sel)
	ready := s.readyLocked()
	s.mu.Unlock()

	s.selectionChanged(view, ready)
	return view, nil
}

// ClearSlot discards a slot's selection wholesale.
func (s *Session) ClearSlot(slot types.Slot) (SlotView, error) {
	s.mu.Lock()
	sel, err := s.selection(slot)
	if err != nil {
		s.mu.Unlock()
		return SlotView{}, err
	}
	sel.Clear()
	s.renderer.Render(slot, nil)
	view := s.slotViewLocked(sel)
	ready := s.readyLocked()
	s.mu.Unlock()

	s.selectionChanged(view, ready)
	return view, nil
}

// Slot returns the current view of one slot.
func (s *Session) Slot(slot types.Slot) (SlotView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := s.selection(slot)
	if err != nil {
		return SlotView{}, err
	}
	return s.slotViewLocked(sel), nil
}

// Previews returns the slot's descriptors, resolved or not.
func (s *Session) Previews(slot types.Slot) ([]preview.Descriptor, error) {
	if _, err := s.selection(slot); err != nil {
		return nil, err
	}
	return s.renderer.Descriptors(slot), nil
}

// WaitPreviews blocks until every preview of slot has resolved.
func (s *Session) WaitPreviews(ctx context.Context, slot types.Slot) error {
	return s.renderer.Wait(ctx, slot)
}

// File looks up a selected file by name.
func (s *Session) File(slot types.Slot, name string) (types.MediaFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := s.selection(slot)
	if err != nil {
		return types.MediaFile{}, err
	}
	f, ok := sel.Lookup(name)
	if !ok {
		return types.MediaFile{}, fmt.Errorf("%w: %s", ErrFileNotSelected, name)
	}
	return f, nil
}

// Ready reports whether both slots hold at least one file.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Session) readyLocked() bool {
	return !s.label.Empty() && !s.damage.Empty()
}

// Submit starts a submission with the current selections and runs it to
// completion. Guard errors (not ready, in flight, error pending) leave the
// banner alone; backend failures raise it.
func (s *Session) Submit(ctx context.Context) (*types.Outcome, error) {
	if err := s.StartSubmit(); err != nil {
		return nil, err
	}
	return s.CompleteSubmit(ctx)
}

// StartSubmit checks the submit guards and moves the sequencer to Verifying
// without calling the backend. CompleteSubmit does the rest, possibly on
// another goroutine.
func (s *Session) StartSubmit() error {
	s.mu.Lock()
	labels := s.label.Files()
	damage := s.damage.Files()
	s.mu.Unlock()
	return s.seq.Begin(labels, damage)
}

// CompleteSubmit runs the backend calls of the submission StartSubmit began.
func (s *Session) CompleteSubmit(ctx context.Context) (*types.Outcome, error) {
	outcome, err := s.seq.Run(ctx)
	if err != nil {
		if errors.Is(err, claim.ErrNotStarted) {
			return nil, err
		}
		msg := claim.DisplayMessage(err)
		s.mu.Lock()
		s.banner = msg
		s.mu.Unlock()
		s.notify(types.NotifyTypeError, "Submission failed", msg, nil)
		return nil, err
	}
	return outcome, nil
}

// Dismiss hides the error banner and returns an errored sequencer to Idle.
func (s *Session) Dismiss() {
	s.mu.Lock()
	s.banner = ""
	s.mu.Unlock()
	s.seq.Dismiss()
}

// Reset goes back to the upload step. Selections stay as they are; the
// finished result and the banner are dropped. A submission in flight is left
// alone.
func (s *Session) Reset() {
	s.mu.Lock()
	s.banner = ""
	s.mu.Unlock()
	s.seq.Reset()
}

// Banner is the current error banner text, empty when hidden.
func (s *Session) Banner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banner
}

func (s *Session) State() types.SubmissionState {
	return s.seq.State()
}

// Snapshot copies the whole session for display.
func (s *Session) Snapshot() View {
	snap := s.seq.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:      s.id,
		Label:   s.slotViewLocked(s.label),
		Damage:  s.slotViewLocked(s.damage),
		Ready:   s.readyLocked(),
		Step:    StepUpload,
		State:   snap.State,
		Banner:  s.banner,
		Outcome: snap.Outcome,
	}
	if snap.State == types.StateDone {
		v.Step = StepResults
	}
	return v
}

func (s *Session) slotViewLocked(sel *Selection) SlotView {
	return SlotView{
		Slot:        sel.Slot(),
		Files:       sel.Files(),
		Summary:     sel.Summary(),
		SingleVideo: sel.SingleVideo(),
		Previews:    s.renderer.Descriptors(sel.Slot()),
	}
}

func (v SlotView) count() int {
	return len(v.Files)
}

func (s *Session) selectionChanged(view SlotView, ready bool) {
	s.notify(types.NotifyTypeSelectionChanged, "Selection changed", view.Summary, map[string]any{
		"slot":        view.Slot,
		"count":       view.count(),
		"singleVideo": view.SingleVideo,
		"ready":       ready,
	})
}

func (s *Session) previewResolved(slot types.Slot, d preview.Descriptor) {
	s.notify(types.NotifyTypePreviewReady, "Preview ready", d.Name, map[string]any{
		"slot":    slot,
		"preview": d,
	})
}

func (s *Session) stateChanged(snap claim.Snapshot) {
	s.notify(types.NotifyTypeSubmissionState, "Submission "+string(snap.State), snap.Error, map[string]any{
		"state": snap.State,
	})
	if snap.State == types.StateDone && snap.Outcome != nil {
		s.notify(types.NotifyTypeSubmissionDone, "Submission finished", snap.Outcome.DateBanner.English, map[string]any{
			"outcome": snap.Outcome,
		})
	}
}

func (s *Session) notify(kind, title, message string, data map[string]any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(&types.Notification{
		Type:      kind,
		SessionId: s.id,
		Title:     title,
		Message:   message,
		Data:      data,
	})
}

func reasonLabel(reason error) string {
	switch {
	case errors.Is(reason, ErrTooManyFiles):
		return "too_many_files"
	case errors.Is(reason, ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(reason, ErrFileTooLarge):
		return "file_too_large"
	case errors.Is(reason, ErrMixedMedia):
		return "mixed_media"
	case errors.Is(reason, ErrVideoBatch):
		return "video_batch"
	default:
		return "other"
	}
}
