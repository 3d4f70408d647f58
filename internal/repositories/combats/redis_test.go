package combats_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    combats.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := combats.NewRedis(&combats.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) createCombat(id string) *entities.Combat {
	combat := &entities.Combat{
		ID:        id,
		GameID:    "game_1",
		SceneID:   "scene_1",
		Round:     1,
		IsActive:  true,
		StartedAt: 1000,
	}
	_, err := s.repo.Create(s.ctx, combats.CreateInput{Combat: combat})
	s.Require().NoError(err)
	return combat
}

func (s *RedisRepositoryTestSuite) TestCreate_SecondActiveCombatRejected() {
	s.createCombat("combat_1")

	_, err := s.repo.Create(s.ctx, combats.CreateInput{
		Combat: &entities.Combat{
			ID:       "combat_2",
			GameID:   "game_1",
			IsActive: true,
		},
	})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetActive() {
	combat := s.createCombat("combat_1")

	out, err := s.repo.GetActive(s.ctx, combats.GetActiveInput{GameID: "game_1"})
	s.Require().NoError(err)
	s.Equal(combat.ID, out.Combat.ID)

	_, err = s.repo.GetActive(s.ctx, combats.GetActiveInput{GameID: "game_2"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestGetState_EmptyParticipants() {
	s.createCombat("combat_1")

	out, err := s.repo.GetState(s.ctx, combats.GetStateInput{CombatID: "combat_1"})
	s.Require().NoError(err)
	s.Empty(out.State.Participants)
	s.Equal(int32(1), out.State.Combat.Round)
}

func (s *RedisRepositoryTestSuite) TestMutate_CommitsStateAtomically() {
	s.createCombat("combat_1")

	out, err := s.repo.Mutate(s.ctx, combats.MutateInput{
		CombatID: "combat_1",
		Fn: func(state *combats.State) error {
			state.Participants = append(state.Participants, entities.CombatParticipant{
				ID:            "p_1",
				CombatID:      "combat_1",
				ActorInGameID: "actor_1",
				Initiative:    17,
				IsActive:      true,
				IsConscious:   true,
			})
			state.Combat.Round = 2
			return nil
		},
	})
	s.Require().NoError(err)
	s.Len(out.State.Participants, 1)

	stored, err := s.repo.GetState(s.ctx, combats.GetStateInput{CombatID: "combat_1"})
	s.Require().NoError(err)
	s.Len(stored.State.Participants, 1)
	s.Equal(int32(2), stored.State.Combat.Round)
}

func (s *RedisRepositoryTestSuite) TestMutate_PropagatesDomainError() {
	s.createCombat("combat_1")

	_, err := s.repo.Mutate(s.ctx, combats.MutateInput{
		CombatID: "combat_1",
		Fn: func(state *combats.State) error {
			return errors.FailedPrecondition("not this participant's turn")
		},
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RedisRepositoryTestSuite) TestMutate_MissingCombat() {
	_, err := s.repo.Mutate(s.ctx, combats.MutateInput{
		CombatID: "missing",
		Fn:       func(state *combats.State) error { return nil },
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestEnd_ReleasesActivePointer() {
	combat := s.createCombat("combat_1")
	combat.IsActive = false
	combat.EndedAt = 2000

	_, err := s.repo.End(s.ctx, combats.EndInput{Combat: combat})
	s.Require().NoError(err)

	_, err = s.repo.GetActive(s.ctx, combats.GetActiveInput{GameID: "game_1"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))

	// The ended row remains readable.
	out, err := s.repo.Get(s.ctx, combats.GetInput{ID: "combat_1"})
	s.Require().NoError(err)
	s.False(out.Combat.IsActive)
	s.Equal(int64(2000), out.Combat.EndedAt)

	// A new combat may now start in the same game.
	s.createCombat("combat_2")
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
