package intake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/claimdesk/claim"
	"github.com/moyoez/claimdesk/transfer"
	"github.com/moyoez/claimdesk/types"
)

type stubBackend struct {
	mu           sync.Mutex
	verifyCalls  int
	assessCalls  int
	verification *types.VerificationResult
	verifyErr    error
	claim        *types.ClaimResult
}

func (b *stubBackend) VerifyDate(ctx context.Context, label types.MediaFile) (*types.VerificationResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verifyCalls++
	return b.verification, b.verifyErr
}

func (b *stubBackend) AssessDamage(ctx context.Context, files []types.MediaFile, v *types.VerificationResult) (*types.ClaimResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assessCalls++
	return b.claim, nil
}

type recorder struct {
	mu     sync.Mutex
	events []*types.Notification
}

func (r *recorder) Notify(n *types.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestSession(t *testing.T, b *stubBackend) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := NewSession("", b, Options{
		ThumbnailSize:  32,
		PreviewWorkers: 2,
		Sequencer:      claim.Options{Model: "gpt-4.1-mini", USDToTHB: 35},
		Notifier:       rec,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.WaitPreviews(ctx, types.SlotLabel)
		_ = s.WaitPreviews(ctx, types.SlotDamage)
	})
	return s, rec
}

func days(v int) *int { return &v }

func TestSessionRejectionLeavesSelectionAndRaisesBanner(t *testing.T) {
	s, rec := newTestSession(t, &stubBackend{})
	_, err := s.AddFiles(types.SlotLabel, []types.MediaFile{img("a.png", 1)})
	require.NoError(t, err)

	view, err := s.AddFiles(types.SlotLabel, []types.MediaFile{img("b.png", 1), img("c.png", 1), img("d.png", 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyFiles)
	assert.Equal(t, []string{"a.png"}, names(view.Files))
	assert.Equal(t, "You can upload a maximum of 3 label images.", s.Banner())

	// rejecting again changes nothing
	_, err = s.AddFiles(types.SlotLabel, []types.MediaFile{img("b.png", 1), img("c.png", 1), img("d.png", 1)})
	require.Error(t, err)
	v, err := s.Slot(types.SlotLabel)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, names(v.Files))
	assert.Contains(t, rec.kinds(), types.NotifyTypeSelectionRejected)

	s.Dismiss()
	assert.Empty(t, s.Banner())
}

func TestSessionEmptyBatchIsSilent(t *testing.T) {
	s, _ := newTestSession(t, &stubBackend{})
	_, err := s.AddFiles(types.SlotDamage, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
	assert.Empty(t, s.Banner())
}

func TestSessionReadyAndSnapshot(t *testing.T) {
	s, rec := newTestSession(t, &stubBackend{})
	assert.False(t, s.Ready())

	_, err := s.AddFiles(types.SlotLabel, []types.MediaFile{img("label.png", 2*mb)})
	require.NoError(t, err)
	assert.False(t, s.Ready())

	view, err := s.AddFiles(types.SlotDamage, []types.MediaFile{video("clip.mp4", 10)})
	require.NoError(t, err)
	assert.True(t, view.SingleVideo)
	assert.True(t, s.Ready())

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.ID)
	assert.True(t, snap.Ready)
	assert.Equal(t, StepUpload, snap.Step)
	assert.Equal(t, types.StateIdle, snap.State)
	assert.Equal(t, "label.png", snap.Label.Summary)
	require.Len(t, snap.Damage.Previews, 1)
	assert.Equal(t, "clip.mp4", snap.Damage.Previews[0].RemoveKey)
	assert.Contains(t, rec.kinds(), types.NotifyTypeSelectionChanged)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.WaitPreviews(ctx, types.SlotDamage))
	previews, err := s.Previews(types.SlotDamage)
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, "/api/self/v1/sessions/"+s.ID()+"/slots/damage/files/clip.mp4", previews[0].Source)

	_, err = s.RemoveFile(types.SlotDamage, "clip.mp4")
	require.NoError(t, err)
	assert.False(t, s.Ready())
	v, _ := s.Slot(types.SlotDamage)
	assert.False(t, v.SingleVideo)
}

func TestSessionFileLookup(t *testing.T) {
	s, _ := newTestSession(t, &stubBackend{})
	_, err := s.AddFiles(types.SlotDamage, []types.MediaFile{img("a.png", 1)})
	require.NoError(t, err)
	f, err := s.File(types.SlotDamage, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "a.png", f.Name)
	_, err = s.File(types.SlotDamage, "b.png")
	assert.ErrorIs(t, err, ErrFileNotSelected)
	_, err = s.File(types.Slot("x"), "a.png")
	assert.Error(t, err)
}

func TestSessionSubmitIneligible(t *testing.T) {
	b := &stubBackend{verification: &types.VerificationResult{
		English: types.VerificationDetail{Status: "INELIGIBLE", DaysElapsed: days(400)},
	}}
	s, rec := newTestSession(t, b)

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, claim.ErrNotReady)
	assert.Equal(t, types.StateIdle, s.State())

	_, err = s.AddFiles(types.SlotLabel, []types.MediaFile{img("label.png", 1)})
	require.NoError(t, err)
	_, err = s.AddFiles(types.SlotDamage, []types.MediaFile{img("dent.png", 1)})
	require.NoError(t, err)

	out, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Claimable)
	assert.Equal(t, 0, b.assessCalls)

	snap := s.Snapshot()
	assert.Equal(t, StepResults, snap.Step)
	assert.Equal(t, types.StateDone, snap.State)
	assert.Contains(t, rec.kinds(), types.NotifyTypeSubmissionDone)
}

func TestSessionSubmitFailureShowsBackendMessage(t *testing.T) {
	b := &stubBackend{verifyErr: &transfer.BackendError{Endpoint: transfer.EndpointVerify, StatusCode: 422, Message: "No date found on label"}}
	s, _ := newTestSession(t, b)
	_, _ = s.AddFiles(types.SlotLabel, []types.MediaFile{img("label.png", 1)})
	_, _ = s.AddFiles(types.SlotDamage, []types.MediaFile{img("dent.png", 1)})

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "No date found on label", s.Banner())
	assert.Equal(t, types.StateError, s.State())

	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, claim.ErrErrorPending)

	s.Dismiss()
	assert.Equal(t, types.StateIdle, s.State())
	assert.Empty(t, s.Banner())
	assert.Equal(t, 1, b.verifyCalls)
}

func TestSessionReset(t *testing.T) {
	b := &stubBackend{verification: &types.VerificationResult{English: types.VerificationDetail{Status: types.StatusEligible}}, claim: &types.ClaimResult{Claimable: true}}
	s, _ := newTestSession(t, b)
	_, _ = s.AddFiles(types.SlotLabel, []types.MediaFile{img("label.png", 1)})
	_, _ = s.AddFiles(types.SlotDamage, []types.MediaFile{img("dent.png", 1)})
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.Equal(t, StepResults, s.Snapshot().Step)

	s.Reset()
	snap := s.Snapshot()
	assert.True(t, snap.Ready, "selections are kept")
	assert.Equal(t, StepUpload, snap.Step)
	assert.Equal(t, types.StateIdle, snap.State)
	assert.Nil(t, snap.Outcome)
	assert.Equal(t, "label.png", snap.Label.Summary)
	assert.Equal(t, "dent.png", snap.Damage.Summary)

	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, b.verifyCalls)
}

func TestSessionStartSubmitIsSynchronous(t *testing.T) {
	b := &stubBackend{verification: &types.VerificationResult{English: types.VerificationDetail{Status: types.StatusEligible}}, claim: &types.ClaimResult{Claimable: true}}
	s, _ := newTestSession(t, b)
	assert.ErrorIs(t, s.StartSubmit(), claim.ErrNotReady)

	_, _ = s.AddFiles(types.SlotLabel, []types.MediaFile{img("label.png", 1)})
	_, _ = s.AddFiles(types.SlotDamage, []types.MediaFile{img("dent.png", 1)})
	require.NoError(t, s.StartSubmit())
	assert.Equal(t, types.StateVerifying, s.State())
	assert.ErrorIs(t, s.StartSubmit(), claim.ErrSubmissionInFlight)
	assert.Equal(t, 0, b.verifyCalls)

	out, err := s.CompleteSubmit(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Claimable)
	assert.Equal(t, types.StateDone, s.State())
}
