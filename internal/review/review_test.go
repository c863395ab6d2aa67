package review

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/hancards/internal/model"
	"github.com/verte-zerg/hancards/internal/progress"
	"github.com/verte-zerg/hancards/internal/srs"
	"github.com/verte-zerg/hancards/internal/store"
)

type fixture struct {
	reviewer *Reviewer
	store    *store.Store
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "hancards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f := &fixture{store: st, now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	tracker := progress.NewTracker(st, progress.WithClock(clock), progress.WithLocation(time.UTC))
	f.reviewer = New(st, tracker, WithClock(clock))
	return f
}

func TestRateFirstCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := model.Flashcard{ID: "gen-1-0", Korean: "사과", English: "apple", Difficulty: 1}

	out, err := f.reviewer.Rate(ctx, card, SwipeRight)
	require.NoError(t, err)
	assert.True(t, out.Celebrate)
	assert.Equal(t, []string{progress.FirstCard}, out.Unlocked)
	assert.Equal(t, 1, out.Progress.TotalCardsReviewed)
	assert.Equal(t, 1.0, out.Card.Difficulty)
	require.NotNil(t, out.Card.NextReview)
	assert.True(t, out.Card.NextReview.Equal(f.now.Add(24*time.Hour)))

	reviews, err := f.store.ListReviews(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, f.reviewer.SessionID(), reviews[0].SessionID)
	assert.Equal(t, SwipeRight, reviews[0].Rating)
	assert.Equal(t, 1.0, reviews[0].DifficultyBefore)

	states, err := f.store.CardStates(ctx)
	require.NoError(t, err)
	assert.Contains(t, states, "사과")
}

func TestRateSwipeLeftNoCelebrate(t *testing.T) {
	f := newFixture(t)
	out, err := f.reviewer.Rate(context.Background(), model.Flashcard{ID: "a", Korean: "학교", Difficulty: 4.5}, SwipeLeft)
	require.NoError(t, err)
	assert.False(t, out.Celebrate)
	assert.Equal(t, srs.MaxDifficulty, out.Card.Difficulty)
	assert.Equal(t, []string{progress.FirstCard, progress.LevelFive}, out.Unlocked)
	assert.Equal(t, 1, out.Progress.CardsByLevel[5])
}

func TestRateInvalidChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.reviewer.Rate(ctx, model.Flashcard{ID: "a", Korean: "학교", Difficulty: 2}, 6)
	require.ErrorIs(t, err, srs.ErrInvalidRating)

	p, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalCardsReviewed)
	reviews, err := f.store.ListReviews(ctx, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestUnlockedOnlyReportsNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := model.Flashcard{ID: "a", Korean: "물", Difficulty: 2}
	_, err := f.reviewer.Rate(ctx, card, 3)
	require.NoError(t, err)
	out, err := f.reviewer.Rate(ctx, card, 3)
	require.NoError(t, err)
	assert.Empty(t, out.Unlocked)
	assert.Equal(t, 2, out.Progress.TotalCardsReviewed)
}

func TestDueCards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.reviewer.Rate(ctx, model.Flashcard{ID: "a", Korean: "사과", Difficulty: 1}, 5)
	require.NoError(t, err)

	due, err := f.reviewer.DueCards(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	f.now = f.now.Add(25 * time.Hour)
	due, err = f.reviewer.DueCards(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "사과", due[0].Korean)
}

type brokenStore struct{}

func (brokenStore) RecordReview(context.Context, model.Flashcard, model.Review, func(model.UserProgress) model.UserProgress) (model.UserProgress, error) {
	return model.UserProgress{}, errors.New("disk full")
}
func (brokenStore) DueCards(context.Context, time.Time, int) ([]model.Flashcard, error) {
	return nil, errors.New("disk full")
}

func TestRateStoreFailureSkipsProgress(t *testing.T) {
	mem := progress.NewMemoryStorage()
	r := New(brokenStore{}, progress.NewTracker(mem))
	_, err := r.Rate(context.Background(), model.Flashcard{ID: "a", Korean: "물", Difficulty: 1}, 3)
	require.Error(t, err)

	p, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalCardsReviewed)

	_, err = r.DueCards(context.Background(), 1)
	require.ErrorContains(t, err, "failed to load due cards")
}

// cancelingStore aborts the caller's context once progress has been computed,
// so the final progress write fails inside the store transaction.
type cancelingStore struct {
	*store.Store
	cancel context.CancelFunc
}

func (s cancelingStore) RecordReview(ctx context.Context, card model.Flashcard, r model.Review, apply func(model.UserProgress) model.UserProgress) (model.UserProgress, error) {
	return s.Store.RecordReview(ctx, card, r, func(p model.UserProgress) model.UserProgress {
		p = apply(p)
		s.cancel()
		return p
	})
}

func TestRateProgressFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := func() time.Time { return f.now }
	tracker := progress.NewTracker(f.store, progress.WithClock(clock), progress.WithLocation(time.UTC))
	r := New(cancelingStore{Store: f.store, cancel: cancel}, tracker, WithClock(clock))

	_, err := r.Rate(ctx, model.Flashcard{ID: "a", Korean: "물", Difficulty: 1}, 1)
	require.Error(t, err)

	bg := context.Background()
	p, err := f.store.Load(bg)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalCardsReviewed)
	states, err := f.store.CardStates(bg)
	require.NoError(t, err)
	assert.Empty(t, states)
	reviews, err := f.store.ListReviews(bg, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestRateChainsDifficultyInLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := model.Flashcard{ID: "a", Korean: "사과", Difficulty: 1}

	first, err := f.reviewer.Rate(ctx, card, 1)
	require.NoError(t, err)
	_, err = f.reviewer.Rate(ctx, first.Card, 1)
	require.NoError(t, err)

	reviews, err := f.store.ListReviews(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, reviews[0].DifficultyAfter, reviews[1].DifficultyBefore)
	states, err := f.store.CardStates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, states["사과"].Difficulty)
}

func TestSessionIDsDiffer(t *testing.T) {
	mem := progress.NewMemoryStorage()
	a := New(brokenStore{}, progress.NewTracker(mem))
	b := New(brokenStore{}, progress.NewTracker(mem))
	assert.NotEqual(t, a.SessionID(), b.SessionID())
	assert.Len(t, a.SessionID(), 36)
}

func TestSpeechDuration(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, SpeechDuration("사과"))
	assert.Equal(t, time.Duration(0), SpeechDuration(""))
	assert.Equal(t, 1100*time.Millisecond, SpeechDuration("사과이/가 있습니다."))
}
