package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lobbyn/relay/internal/dependencies/mocks"
	"github.com/lobbyn/relay/internal/model"
	"github.com/lobbyn/relay/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
	clock    *mocks.MockClock
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = New(testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
}

func (s *RegistrySuite) addPending(id string) *mocks.MockSender {
	sender := mocks.NewMockSender()
	s.registry.Add(model.ConnectionID(id), sender, s.clock.Now())
	return sender
}

func (s *RegistrySuite) account(name, tag string) model.ResolvedAccount {
	return model.ResolvedAccount{
		AccountIdentity: model.AccountIdentity{
			DisplayName: name,
			Tag:         tag,
			Region:      model.RegionNA1,
		},
		Ref: model.AccountRef("puuid-" + name),
	}
}

func (s *RegistrySuite) authorize(id string, name, tag string) *mocks.MockSender {
	sender := s.addPending(id)
	connID := model.ConnectionID(id)
	s.Require().NoError(s.registry.MarkIdentified(connID, s.account(name, tag)))
	s.Require().NoError(s.registry.MarkChallenged(connID, 12))
	_, err := s.registry.Authorize(connID, s.clock.Now())
	s.Require().NoError(err)
	return sender
}

func (s *RegistrySuite) TestAddAndGet() {
	s.addPending("c1")

	conn, ok := s.registry.Get("c1")
	s.Require().True(ok)
	s.Equal(model.ConnectionID("c1"), conn.ID)
	s.Equal(model.StatePending, conn.State)
	s.Nil(conn.Identity)
	s.Nil(conn.ChallengeIcon)
}

func (s *RegistrySuite) TestGetMissing() {
	_, ok := s.registry.Get("nope")
	s.False(ok)
}

func (s *RegistrySuite) TestTransitionsAttachStateData() {
	s.addPending("c1")

	s.Require().NoError(s.registry.MarkIdentified("c1", s.account("alice", "NA1")))
	conn, _ := s.registry.Get("c1")
	s.Equal(model.StateIdentified, conn.State)
	s.Require().NotNil(conn.Identity)
	s.Equal("alice", conn.Identity.DisplayName)

	s.Require().NoError(s.registry.MarkChallenged("c1", 7))
	conn, _ = s.registry.Get("c1")
	s.Equal(model.StateChallenged, conn.State)
	s.Require().NotNil(conn.ChallengeIcon)
	s.Equal(model.IconID(7), *conn.ChallengeIcon)

	account, err := s.registry.Authorize("c1", s.clock.Now())
	s.Require().NoError(err)
	s.Equal("alice", account.DisplayName)
	conn, _ = s.registry.Get("c1")
	s.Equal(model.StateAuthorized, conn.State)
	s.Nil(conn.ChallengeIcon)
}

func (s *RegistrySuite) TestInvalidTransitionsRejected() {
	s.addPending("c1")

	s.ErrorIs(s.registry.MarkChallenged("c1", 7), model.ErrInvalidTransition)
	_, err := s.registry.Authorize("c1", s.clock.Now())
	s.ErrorIs(err, model.ErrInvalidTransition)

	s.Require().NoError(s.registry.MarkIdentified("c1", s.account("alice", "NA1")))
	s.ErrorIs(s.registry.MarkIdentified("c1", s.account("alice", "NA1")), model.ErrInvalidTransition)
}

func (s *RegistrySuite) TestTransitionsOnMissingConnection() {
	s.ErrorIs(s.registry.MarkIdentified("ghost", s.account("a", "b")), model.ErrConnectionNotFound)
	s.ErrorIs(s.registry.MarkChallenged("ghost", 1), model.ErrConnectionNotFound)
	_, err := s.registry.Authorize("ghost", s.clock.Now())
	s.ErrorIs(err, model.ErrConnectionNotFound)
}

func (s *RegistrySuite) TestRemoveIsIdempotent() {
	s.addPending("c1")

	s.registry.Remove("c1")
	s.registry.Remove("c1")

	_, ok := s.registry.Get("c1")
	s.False(ok)
}

func (s *RegistrySuite) TestRemoveStopsTimer() {
	s.addPending("c1")
	fired := false
	timer := s.clock.AfterFunc(30*time.Second, func() { fired = true })
	s.registry.ArmTimer("c1", timer)

	s.registry.Remove("c1")
	s.clock.Advance(time.Minute)

	s.False(fired)
}

func (s *RegistrySuite) TestArmTimerOnRemovedConnectionStopsIt() {
	fired := false
	timer := s.clock.AfterFunc(30*time.Second, func() { fired = true })
	s.registry.ArmTimer("never-added", timer)

	s.clock.Advance(time.Minute)

	s.False(fired)
}

func (s *RegistrySuite) TestAuthorizeStopsTimer() {
	s.addPending("c1")
	fired := false
	timer := s.clock.AfterFunc(30*time.Second, func() { fired = true })
	s.registry.ArmTimer("c1", timer)

	s.Require().NoError(s.registry.MarkIdentified("c1", s.account("alice", "NA1")))
	s.Require().NoError(s.registry.MarkChallenged("c1", 12))
	_, err := s.registry.Authorize("c1", s.clock.Now())
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	s.False(fired)
}

func (s *RegistrySuite) TestCloseAndRemoveClosesOnce() {
	sender := s.addPending("c1")

	s.registry.CloseAndRemove("c1", model.CloseInvalidRiotID)
	s.registry.CloseAndRemove("c1", model.CloseTimedOut)

	s.Len(sender.Closes(), 1)
	reason, _ := sender.LastClose()
	s.Equal(model.CloseInvalidRiotID, reason)
	_, ok := s.registry.Get("c1")
	s.False(ok)
}

func (s *RegistrySuite) TestCloseIfUnauthorizedClosesPending() {
	sender := s.addPending("c1")

	closed := s.registry.CloseIfUnauthorized("c1", model.CloseTimedOut)

	s.True(closed)
	reason, ok := sender.LastClose()
	s.Require().True(ok)
	s.Equal("Timed out", reason.Text)
	_, ok = s.registry.Get("c1")
	s.False(ok)
}

func (s *RegistrySuite) TestCloseIfUnauthorizedSparesAuthorized() {
	sender := s.authorize("c1", "alice", "NA1")

	closed := s.registry.CloseIfUnauthorized("c1", model.CloseTimedOut)

	s.False(closed)
	s.Empty(sender.Closes())
	conn, ok := s.registry.Get("c1")
	s.Require().True(ok)
	s.Equal(model.StateAuthorized, conn.State)
}

func (s *RegistrySuite) TestSendDeliversThroughRegistry() {
	sender := s.addPending("c1")

	s.Require().NoError(s.registry.Send("c1", []byte("hello")))

	s.Equal([]byte("hello"), sender.LastSent())
}

func (s *RegistrySuite) TestSendToRemovedConnection() {
	s.addPending("c1")
	s.registry.Remove("c1")

	s.ErrorIs(s.registry.Send("c1", []byte("hello")), model.ErrConnectionNotFound)
}

func (s *RegistrySuite) TestListAuthorizedExcludesHandshaking() {
	s.addPending("pending")
	s.authorize("a1", "alice", "NA1")
	s.authorize("b1", "bob", "EUW")

	peers := s.registry.ListAuthorized()

	s.Len(peers, 2)
	names := map[string]bool{}
	for _, p := range peers {
		names[p.Account.DisplayName] = true
	}
	s.True(names["alice"])
	s.True(names["bob"])
}

func (s *RegistrySuite) TestFindByIdentityIgnoresRegionAndCase() {
	s.authorize("a1", "Alice", "NA1")

	id, ok := s.registry.FindByIdentity("alice", "na1")
	s.Require().True(ok)
	s.Equal(model.ConnectionID("a1"), id)
}

func (s *RegistrySuite) TestFindByIdentityIgnoresUnauthorized() {
	sender := mocks.NewMockSender()
	s.registry.Add("c1", sender, s.clock.Now())
	s.Require().NoError(s.registry.MarkIdentified("c1", s.account("alice", "NA1")))

	_, ok := s.registry.FindByIdentity("alice", "NA1")
	s.False(ok)
}

func (s *RegistrySuite) TestFindByIdentityPrefersMostRecent() {
	s.authorize("old", "alice", "NA1")
	s.clock.Advance(time.Second)
	s.authorize("new", "alice", "NA1")

	id, ok := s.registry.FindByIdentity("alice", "NA1")
	s.Require().True(ok)
	s.Equal(model.ConnectionID("new"), id)
}

func (s *RegistrySuite) TestCounts() {
	s.addPending("p1")
	s.addPending("p2")
	s.authorize("a1", "alice", "NA1")

	unauthorized, authorized := s.registry.Counts()
	s.Equal(2, unauthorized)
	s.Equal(1, authorized)
}

func (s *RegistrySuite) TestConcurrentLifecycles() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := model.ConnectionID(fmt.Sprintf("conn-%d", n))
			sender := mocks.NewMockSender()
			s.registry.Add(id, sender, s.clock.Now())
			_ = s.registry.MarkIdentified(id, s.account(fmt.Sprintf("p%d", n), "TAG"))
			_ = s.registry.MarkChallenged(id, model.IconID(n%30))
			_, _ = s.registry.Authorize(id, s.clock.Now())
			_ = s.registry.Send(id, []byte("x"))
			s.registry.Remove(id)
			s.registry.Remove(id)
		}(i)
	}
	wg.Wait()

	unauthorized, authorized := s.registry.Counts()
	s.Zero(unauthorized)
	s.Zero(authorized)
}
