package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/typerace/internal/dependencies/mocks"
	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/services/paragraph"
	"github.com/mcoot/typerace/internal/services/scoring"
	"github.com/mcoot/typerace/internal/testutil"
)

const testParagraph = "the quick brown fox jumps"

type SessionSuite struct {
	suite.Suite
	ctx         context.Context
	clock       *mocks.MockClock
	random      *mocks.MockRandom
	recorder    *recorder
	registry    *Registry
	text        string
	providerErr error
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.recorder = &recorder{}
	s.text = testParagraph
	s.providerErr = nil

	provider := paragraph.ProviderFunc(func(context.Context) (string, error) {
		return s.text, s.providerErr
	})
	s.registry = NewRegistry(DefaultConfig(), provider, scoring.New(), s.recorder, s.clock, s.random, testutil.NopLogger())
}

func (s *SessionSuite) player(id string) model.Player {
	return model.Player{ID: model.PlayerID(id), Name: "Player " + id}
}

// joinAll creates session "room" and joins the given players in order
func (s *SessionSuite) joinAll(ids ...string) *Session {
	sess := s.registry.GetOrCreate("room")
	for _, id := range ids {
		s.Require().NoError(sess.Join(s.player(id)))
	}
	return sess
}

func (s *SessionSuite) startedWith(ids ...string) *Session {
	sess := s.joinAll(ids...)
	s.Require().NoError(sess.Start(s.ctx, model.PlayerID(ids[0])))
	s.recorder.reset()
	return sess
}

// Join tests

func (s *SessionSuite) TestNewSessionIsEmpty() {
	snap := s.registry.GetOrCreate("room").Snapshot()

	s.Equal(model.SessionID("room"), snap.ID)
	s.Equal(model.StatusNotStarted, snap.Status)
	s.Empty(snap.Players)
	s.Empty(snap.Paragraph)
	s.Empty(snap.HostID)
}

func (s *SessionSuite) TestFirstJoinerIsHost() {
	sess := s.joinAll("a", "b", "c")

	snap := sess.Snapshot()
	s.Equal(model.PlayerID("a"), snap.HostID)
	s.Require().Len(snap.Players, 3)
	s.Equal(model.PlayerID("a"), snap.Players[0].ID)
	s.Equal(model.PlayerID("b"), snap.Players[1].ID)
	s.Equal(model.PlayerID("c"), snap.Players[2].ID)
}

func (s *SessionSuite) TestJoinEvents() {
	sess := s.joinAll("a")
	s.recorder.reset()

	s.Require().NoError(sess.Join(s.player("b")))

	s.Equal([]model.EventType{model.EventPlayerJoined, model.EventPlayers, model.EventNewHost}, s.recorder.types())

	joined := s.recorder.broadcasts(model.EventPlayerJoined)
	s.Require().Len(joined, 1)
	s.Equal(model.PlayerJoinedPayload{ID: "b", Name: "Player b", Score: 0}, joined[0].Payload)

	sent := s.recorder.sentTo("b")
	s.Require().Len(sent, 2)
	roster := sent[0].Payload.([]model.Player)
	s.Len(roster, 2)
	s.Equal(model.NewHostPayload{HostID: "a"}, sent[1].Payload)
}

func (s *SessionSuite) TestJoinResetsIncomingScore() {
	sess := s.registry.GetOrCreate("room")
	p := s.player("a")
	p.Score = 42

	s.Require().NoError(sess.Join(p))
	s.Equal(0, sess.Snapshot().Players[0].Score)
}

func (s *SessionSuite) TestJoinDuringRoundRejected() {
	sess := s.startedWith("a")

	err := sess.Join(s.player("late"))
	s.ErrorIs(err, model.ErrJoinAfterStart)

	sent := s.recorder.sentTo("late")
	s.Require().Len(sent, 1)
	s.Equal(model.EventError, sent[0].Type)
	s.Equal("You cannot join the already started game", sent[0].Payload)
	s.Empty(s.recorder.broadcasts(model.EventPlayerJoined))
	s.Len(sess.Snapshot().Players, 1)
}

func (s *SessionSuite) TestDuplicateJoinRejected() {
	sess := s.joinAll("a")
	s.recorder.reset()

	err := sess.Join(s.player("a"))
	s.ErrorIs(err, model.ErrAlreadyJoined)
	s.Len(sess.Snapshot().Players, 1)
	s.Equal([]model.EventType{model.EventError}, s.recorder.types())
}

func (s *SessionSuite) TestJoinAfterFinishAllowed() {
	sess := s.startedWith("a")
	s.clock.Advance(60 * time.Second)

	s.Require().NoError(sess.Join(s.player("b")))
	s.Len(sess.Snapshot().Players, 2)
}

// Start tests

func (s *SessionSuite) TestStartByHost() {
	sess := s.joinAll("a", "b")
	s.recorder.reset()

	s.Require().NoError(sess.Start(s.ctx, "a"))

	snap := sess.Snapshot()
	s.Equal(model.StatusInProgress, snap.Status)
	s.Equal(testParagraph, snap.Paragraph)
	s.Equal(1, snap.Round)

	s.Equal([]model.EventType{model.EventPlayers, model.EventGameStarted}, s.recorder.types())
	started := s.recorder.broadcasts(model.EventGameStarted)
	s.Require().Len(started, 1)
	s.Equal(model.GameStartedPayload{Paragraph: testParagraph}, started[0].Payload)
	s.Equal(1, s.clock.PendingTimers())
}

func (s *SessionSuite) TestStartAloneSucceeds() {
	sess := s.joinAll("a")

	s.Require().NoError(sess.Start(s.ctx, "a"))
	s.Equal(model.StatusInProgress, sess.Snapshot().Status)
	s.Len(s.recorder.broadcasts(model.EventGameStarted), 1)
}

func (s *SessionSuite) TestStartResetsScores() {
	sess := s.startedWith("a", "b")
	s.Require().NoError(sess.SubmitTyped("b", "the quick"))
	s.clock.Advance(60 * time.Second)
	s.recorder.reset()

	s.Require().NoError(sess.Start(s.ctx, "a"))

	rosters := s.recorder.broadcasts(model.EventPlayers)
	s.Require().Len(rosters, 1)
	for _, p := range rosters[0].Payload.([]model.Player) {
		s.Equal(0, p.Score)
	}
}

func (s *SessionSuite) TestStartByNonHostRejected() {
	sess := s.joinAll("a", "b")
	s.recorder.reset()

	err := sess.Start(s.ctx, "b")
	s.ErrorIs(err, model.ErrNotHost)

	snap := sess.Snapshot()
	s.Equal(model.StatusNotStarted, snap.Status)
	s.Empty(snap.Paragraph)

	s.Equal([]model.EventType{model.EventError}, s.recorder.types())
	s.Equal("You are not the host of the game", s.recorder.sentTo("b")[0].Payload)
	s.Equal(0, s.clock.PendingTimers())
}

func (s *SessionSuite) TestStartByNonHostKeepsScores() {
	sess := s.startedWith("a", "b")
	s.Require().NoError(sess.SubmitTyped("b", "the quick brown"))
	s.clock.Advance(60 * time.Second)

	s.ErrorIs(sess.Start(s.ctx, "b"), model.ErrNotHost)

	snap := sess.Snapshot()
	s.Equal(model.StatusFinished, snap.Status)
	s.Equal(testParagraph, snap.Paragraph)
	s.Equal(3, snap.Players[1].Score)
}

func (s *SessionSuite) TestStartWhileInProgressRejected() {
	sess := s.startedWith("a")

	err := sess.Start(s.ctx, "a")
	s.ErrorIs(err, model.ErrGameAlreadyStarted)
	s.Equal("The game has already started", s.recorder.sentTo("a")[0].Payload)
	s.Equal(1, s.sessionRound(sess))
	s.Equal(1, s.clock.PendingTimers())
}

func (s *SessionSuite) TestRestartAfterFinish() {
	sess := s.startedWith("a")
	s.clock.Advance(60 * time.Second)
	s.text = "a second paragraph"

	s.Require().NoError(sess.Start(s.ctx, "a"))

	snap := sess.Snapshot()
	s.Equal(model.StatusInProgress, snap.Status)
	s.Equal("a second paragraph", snap.Paragraph)
	s.Equal(2, snap.Round)
}

func (s *SessionSuite) TestProviderFailureRevertsStart() {
	sess := s.joinAll("a", "b")
	s.providerErr = errors.New("provider down")
	s.recorder.reset()

	err := sess.Start(s.ctx, "a")
	s.ErrorIs(err, model.ErrParagraphUnavailable)

	snap := sess.Snapshot()
	s.Equal(model.StatusNotStarted, snap.Status)
	s.Empty(snap.Paragraph)
	s.Equal(0, s.clock.PendingTimers())
	s.Empty(s.recorder.broadcasts(model.EventGameStarted))
	s.Equal("Could not generate a paragraph, please try again", s.recorder.sentTo("a")[0].Payload)

	// The flag is cleared so the host can retry
	s.providerErr = nil
	s.Require().NoError(sess.Start(s.ctx, "a"))
}

func (s *SessionSuite) TestEmptyParagraphRevertsStart() {
	sess := s.joinAll("a")
	s.text = "   "

	s.ErrorIs(sess.Start(s.ctx, "a"), model.ErrParagraphUnavailable)
	s.Equal(model.StatusNotStarted, sess.Snapshot().Status)
}

func (s *SessionSuite) TestProviderTimeout() {
	cfg := DefaultConfig()
	cfg.ParagraphTimeout = 10 * time.Millisecond
	slow := paragraph.ProviderFunc(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	registry := NewRegistry(cfg, slow, scoring.New(), s.recorder, s.clock, s.random, testutil.NopLogger())
	sess := registry.GetOrCreate("room")
	s.Require().NoError(sess.Join(s.player("a")))

	err := sess.Start(s.ctx, "a")
	s.ErrorIs(err, model.ErrParagraphUnavailable)
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *SessionSuite) TestConcurrentStartWhileFetching() {
	release := make(chan struct{})
	fetching := make(chan struct{})
	blocking := paragraph.ProviderFunc(func(ctx context.Context) (string, error) {
		close(fetching)
		<-release
		return testParagraph, nil
	})
	registry := NewRegistry(DefaultConfig(), blocking, scoring.New(), s.recorder, s.clock, s.random, testutil.NopLogger())
	sess := registry.GetOrCreate("room")
	s.Require().NoError(sess.Join(s.player("a")))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = sess.Start(s.ctx, "a")
	}()

	<-fetching
	s.Equal(model.StatusNotStarted, sess.Snapshot().Status)
	s.ErrorIs(sess.Start(s.ctx, "a"), model.ErrGameAlreadyStarted)

	close(release)
	wg.Wait()

	s.NoError(firstErr)
	s.Len(s.recorder.broadcasts(model.EventGameStarted), 1)
	s.Equal(1, s.clock.PendingTimers())
}

func (s *SessionSuite) TestLastPlayerLeavesDuringFetch() {
	release := make(chan struct{})
	fetching := make(chan struct{})
	blocking := paragraph.ProviderFunc(func(ctx context.Context) (string, error) {
		close(fetching)
		<-release
		return testParagraph, nil
	})
	registry := NewRegistry(DefaultConfig(), blocking, scoring.New(), s.recorder, s.clock, s.random, testutil.NopLogger())
	sess := registry.GetOrCreate("room")
	s.Require().NoError(sess.Join(s.player("a")))

	done := make(chan error, 1)
	go func() { done <- sess.Start(s.ctx, "a") }()

	<-fetching
	sess.Leave("a")
	close(release)

	s.ErrorIs(<-done, model.ErrSessionClosed)
	s.Empty(s.recorder.broadcasts(model.EventGameStarted))
	s.Equal(0, s.clock.PendingTimers())
}

// Round timer tests

func (s *SessionSuite) TestRoundFinishesAfterDuration() {
	sess := s.startedWith("a", "b")
	s.Require().NoError(sess.SubmitTyped("b", "the quick"))
	s.recorder.reset()

	s.clock.Advance(59 * time.Second)
	s.Equal(model.StatusInProgress, sess.Snapshot().Status)
	s.Empty(s.recorder.all())

	s.clock.Advance(time.Second)
	s.Equal(model.StatusFinished, sess.Snapshot().Status)
	s.Equal([]model.EventType{model.EventGameFinished, model.EventPlayers}, s.recorder.types())

	final := s.recorder.broadcasts(model.EventPlayers)[0].Payload.([]model.Player)
	s.Equal(0, final[0].Score)
	s.Equal(2, final[1].Score)

	// Fires exactly once
	s.clock.Advance(time.Hour)
	s.Len(s.recorder.broadcasts(model.EventGameFinished), 1)
}

func (s *SessionSuite) TestFinishedKeepsParagraph() {
	sess := s.startedWith("a")
	s.clock.Advance(60 * time.Second)

	s.Equal(testParagraph, sess.Snapshot().Paragraph)
}

func (s *SessionSuite) TestStaleRoundTimerIgnored() {
	sess := s.startedWith("a")

	// A callback for a previous round must not end the current one
	sess.finishRound(0)
	s.Equal(model.StatusInProgress, sess.Snapshot().Status)
	s.Empty(s.recorder.all())
}

func (s *SessionSuite) TestRoundTimerStopPreventsFire() {
	fired := 0
	rt := startRoundTimer(s.clock, time.Second, func() { fired++ })

	s.True(rt.Stop())
	s.False(rt.Stop())
	s.clock.Advance(time.Minute)
	s.Equal(0, fired)
}

func (s *SessionSuite) TestRoundTimerStopAfterFire() {
	fired := 0
	rt := startRoundTimer(s.clock, time.Second, func() { fired++ })

	s.clock.Advance(time.Second)
	s.Equal(1, fired)
	s.False(rt.Stop())
}

// Submit tests

func (s *SessionSuite) TestSubmitScoresPrefix() {
	sess := s.startedWith("a", "b")

	s.Require().NoError(sess.SubmitTyped("b", "the quick fox"))

	scores := s.recorder.broadcasts(model.EventPlayerScore)
	s.Require().Len(scores, 1)
	s.Equal(model.PlayerScorePayload{ID: "b", Score: 2}, scores[0].Payload)
	s.Equal(2, sess.Snapshot().Players[1].Score)
}

func (s *SessionSuite) TestSubmitLongerThanParagraph() {
	sess := s.startedWith("a")

	s.Require().NoError(sess.SubmitTyped("a", testParagraph+" and then some more"))
	s.Equal(5, sess.Snapshot().Players[0].Score)
}

func (s *SessionSuite) TestSubmitBeforeStartRejected() {
	sess := s.joinAll("a")
	s.recorder.reset()

	s.ErrorIs(sess.SubmitTyped("a", "the"), model.ErrGameNotStarted)
	s.Equal([]model.EventType{model.EventError}, s.recorder.types())
	s.Equal("The game has not started yet", s.recorder.sentTo("a")[0].Payload)
}

func (s *SessionSuite) TestSubmitAfterFinishRejected() {
	sess := s.startedWith("a")
	s.clock.Advance(60 * time.Second)

	s.ErrorIs(sess.SubmitTyped("a", "the"), model.ErrGameNotStarted)
}

func (s *SessionSuite) TestSubmitFromDepartedPlayerIgnored() {
	sess := s.startedWith("a", "b")
	sess.Leave("b")
	s.recorder.reset()

	s.NoError(sess.SubmitTyped("b", "the quick"))
	s.Empty(s.recorder.all())
}

// Leave tests

func (s *SessionSuite) TestLeaveBroadcastsToRemaining() {
	sess := s.joinAll("a", "b")
	s.recorder.reset()

	sess.Leave("b")

	left := s.recorder.broadcasts(model.EventPlayerLeft)
	s.Require().Len(left, 1)
	s.Equal(model.PlayerLeftPayload{ID: "b"}, left[0].Payload)
	s.Equal(model.PlayerID("a"), sess.Snapshot().HostID)
}

func (s *SessionSuite) TestHostMigratesToFirstRemaining() {
	sess := s.joinAll("a", "b", "c")

	sess.Leave("a")

	snap := sess.Snapshot()
	s.Equal(model.PlayerID("b"), snap.HostID)
	s.Require().Len(snap.Players, 2)
	s.Equal(model.PlayerID("b"), snap.Players[0].ID)
	s.Equal(model.PlayerID("c"), snap.Players[1].ID)

	// The former host has no privileges left
	s.Require().NoError(sess.Join(s.player("a")))
	s.ErrorIs(sess.Start(s.ctx, "a"), model.ErrNotHost)
	s.NoError(sess.Start(s.ctx, "b"))
}

func (s *SessionSuite) TestLeaveAbsentPlayerIsNoop() {
	sess := s.joinAll("a")
	s.recorder.reset()

	sess.Leave("ghost")
	s.Empty(s.recorder.all())
	s.Len(sess.Snapshot().Players, 1)
}

func (s *SessionSuite) TestLeaveDoesNotChangeStatus() {
	sess := s.startedWith("a", "b")

	sess.Leave("a")
	s.Equal(model.StatusInProgress, sess.Snapshot().Status)
}

func (s *SessionSuite) TestDisconnectMatchesLeave() {
	sess := s.joinAll("a", "b")
	s.recorder.reset()

	sess.Disconnect("a")

	s.Equal(model.PlayerID("b"), sess.Snapshot().HostID)
	s.Equal([]model.EventType{model.EventPlayerLeft}, s.recorder.types())
}

func (s *SessionSuite) TestLastPlayerLeavingRemovesSession() {
	sess := s.startedWith("a")

	sess.Leave("a")

	_, ok := s.registry.Get("room")
	s.False(ok)
	s.True(sess.Closed())
	s.Equal(0, s.clock.PendingTimers())
	s.Equal([]model.SessionID{"room"}, s.recorder.closedSessions())

	// A timer firing later for the closed session does nothing
	sess.finishRound(1)
	s.clock.Advance(time.Hour)
	s.Empty(s.recorder.all())
}

func (s *SessionSuite) TestStartOnEmptySessionRejected() {
	sess := s.registry.GetOrCreate("empty")

	s.ErrorIs(sess.Start(s.ctx, ""), model.ErrNotHost)

	snap := sess.Snapshot()
	s.Equal(model.StatusNotStarted, snap.Status)
	s.Empty(snap.Players)
	s.Equal(0, s.clock.PendingTimers())
}

func (s *SessionSuite) TestClosedSessionRejectsJoin() {
	sess := s.joinAll("a")
	sess.Leave("a")

	s.ErrorIs(sess.Join(s.player("b")), model.ErrSessionClosed)
}

// Handle tests

func (s *SessionSuite) TestHandleDispatches() {
	sess := s.joinAll("a", "b")

	s.Require().NoError(sess.Handle(s.ctx, "a", model.Event{Type: model.EventStartGame}))
	s.Require().NoError(sess.Handle(s.ctx, "b", model.Event{Type: model.EventPlayerTyped, Payload: "the"}))
	s.Equal(1, sess.Snapshot().Players[1].Score)

	s.Require().NoError(sess.Handle(s.ctx, "b", model.Event{Type: model.EventLeave}))
	s.Require().NoError(sess.Handle(s.ctx, "a", model.Event{Type: model.EventDisconnect}))
	s.True(sess.Closed())
}

func (s *SessionSuite) TestHandleUnknownEvent() {
	sess := s.joinAll("a")
	s.Error(sess.Handle(s.ctx, "a", model.Event{Type: "dance"}))
}

func (s *SessionSuite) sessionRound(sess *Session) int {
	return sess.Snapshot().Round
}
