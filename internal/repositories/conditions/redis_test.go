package conditions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/repositories/conditions"
	"github.com/greyhelm/vtt-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    conditions.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := conditions.NewRedis(&conditions.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) apply(id, actorID string, expiresOnRound *int32) *entities.ActorCondition {
	cond := &entities.ActorCondition{
		ID:             id,
		ActorInGameID:  actorID,
		GameID:         "game_1",
		ConditionID:    "poisoned",
		AppliedOnRound: 1,
		ExpiresOnRound: expiresOnRound,
		AppliedAt:      1000,
	}
	_, err := s.repo.Apply(s.ctx, conditions.ApplyInput{Condition: cond})
	s.Require().NoError(err)
	return cond
}

func round(n int32) *int32 { return &n }

func (s *RedisRepositoryTestSuite) TestApplyAndListForActor() {
	s.apply("cond_1", "actor_1", nil)
	s.apply("cond_2", "actor_1", round(3))
	s.apply("cond_3", "actor_2", nil)

	out, err := s.repo.ListForActor(s.ctx, conditions.ListForActorInput{ActorInGameID: "actor_1"})
	s.Require().NoError(err)
	s.Len(out.Conditions, 2)

	gameOut, err := s.repo.ListForGame(s.ctx, conditions.ListForGameInput{GameID: "game_1"})
	s.Require().NoError(err)
	s.Len(gameOut.Conditions, 3)
}

func (s *RedisRepositoryTestSuite) TestDelete() {
	s.apply("cond_1", "actor_1", nil)

	out, err := s.repo.Delete(s.ctx, conditions.DeleteInput{ID: "cond_1"})
	s.Require().NoError(err)
	s.Equal("poisoned", out.Condition.ConditionID)

	listOut, err := s.repo.ListForActor(s.ctx, conditions.ListForActorInput{ActorInGameID: "actor_1"})
	s.Require().NoError(err)
	s.Empty(listOut.Conditions)

	_, err = s.repo.Delete(s.ctx, conditions.DeleteInput{ID: "cond_1"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestExpireDue_RoundBasedOnly() {
	s.apply("cond_due", "actor_1", round(3))
	s.apply("cond_later", "actor_1", round(5))
	s.apply("cond_indefinite", "actor_1", nil)

	out, err := s.repo.ExpireDue(s.ctx, conditions.ExpireDueInput{
		GameID: "game_1",
		Round:  3,
	})
	s.Require().NoError(err)
	s.Require().Len(out.Expired, 1)
	s.Equal("cond_due", out.Expired[0].ID)

	remaining, err := s.repo.ListForActor(s.ctx, conditions.ListForActorInput{ActorInGameID: "actor_1"})
	s.Require().NoError(err)
	s.Len(remaining.Conditions, 2)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
