package gamelogs_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
	"github.com/greyhelm/vtt-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    gamelogs.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := gamelogs.NewRedis(&gamelogs.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) TestAppendAndList_NewestFirst() {
	for i := 1; i <= 3; i++ {
		_, err := s.repo.Append(s.ctx, gamelogs.AppendInput{
			Log: &entities.GameLog{
				ID:         fmt.Sprintf("log_%d", i),
				GameID:     "game_1",
				ActionType: "attack",
				Payload:    map[string]any{"seq": i},
				CreatedAt:  int64(i * 1000),
			},
		})
		s.Require().NoError(err)
	}

	out, err := s.repo.List(s.ctx, gamelogs.ListInput{GameID: "game_1"})
	s.Require().NoError(err)
	s.Require().Len(out.Logs, 3)
	s.Equal("log_3", out.Logs[0].ID)
	s.Equal("log_1", out.Logs[2].ID)
}

func (s *RedisRepositoryTestSuite) TestList_Pagination() {
	for i := 1; i <= 5; i++ {
		_, err := s.repo.Append(s.ctx, gamelogs.AppendInput{
			Log: &entities.GameLog{
				ID:         fmt.Sprintf("log_%d", i),
				GameID:     "game_1",
				ActionType: "spell_cast",
			},
		})
		s.Require().NoError(err)
	}

	out, err := s.repo.List(s.ctx, gamelogs.ListInput{GameID: "game_1", Offset: 2, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(out.Logs, 2)
	s.Equal("log_3", out.Logs[0].ID)
	s.Equal("log_2", out.Logs[1].ID)
}

func (s *RedisRepositoryTestSuite) TestList_EmptyGame() {
	out, err := s.repo.List(s.ctx, gamelogs.ListInput{GameID: "game_quiet"})
	s.Require().NoError(err)
	s.Empty(out.Logs)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
