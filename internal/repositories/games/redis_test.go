package games_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
	"github.com/greyhelm/vtt-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    games.Repository
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	repo, err := games.NewRedis(&games.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) testGame() *entities.Game {
	return &entities.Game{
		ID:         "game_1",
		Name:       "Curse of the Crypt",
		Status:     entities.GameStatusActive,
		MaxPlayers: 4,
		CreatedBy:  "user_dm",
		CreatedAt:  1000,
		UpdatedAt:  1000,
	}
}

func (s *RedisRepositoryTestSuite) createGame() *entities.Game {
	game := s.testGame()
	out, err := s.repo.CreateGame(s.ctx, games.CreateGameInput{
		Game: game,
		Creator: &entities.GamePlayer{
			GameID:   game.ID,
			UserID:   game.CreatedBy,
			Role:     entities.RoleDM,
			IsActive: true,
			JoinedAt: 1000,
		},
	})
	s.Require().NoError(err)
	return out.Game
}

func (s *RedisRepositoryTestSuite) TestCreateGame_StoresCreatorAsDM() {
	game := s.createGame()

	playerOut, err := s.repo.GetPlayer(s.ctx, games.GetPlayerInput{
		GameID: game.ID,
		UserID: "user_dm",
	})
	s.Require().NoError(err)
	s.Equal(entities.RoleDM, playerOut.Player.Role)
	s.True(playerOut.Player.IsActive)
}

func (s *RedisRepositoryTestSuite) TestCreateGame_DuplicateID() {
	s.createGame()

	_, err := s.repo.CreateGame(s.ctx, games.CreateGameInput{
		Game: s.testGame(),
		Creator: &entities.GamePlayer{
			GameID: "game_1",
			UserID: "user_dm",
			Role:   entities.RoleDM,
		},
	})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetGame_NotFound() {
	_, err := s.repo.GetGame(s.ctx, games.GetGameInput{ID: "missing"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateGame() {
	game := s.createGame()
	game.Status = entities.GameStatusPaused
	game.CurrentSceneID = "scene_1"

	_, err := s.repo.UpdateGame(s.ctx, games.UpdateGameInput{Game: game})
	s.Require().NoError(err)

	out, err := s.repo.GetGame(s.ctx, games.GetGameInput{ID: game.ID})
	s.Require().NoError(err)
	s.Equal(entities.GameStatusPaused, out.Game.Status)
	s.Equal("scene_1", out.Game.CurrentSceneID)
}

func (s *RedisRepositoryTestSuite) TestGetPlayer_NotFound() {
	game := s.createGame()

	_, err := s.repo.GetPlayer(s.ctx, games.GetPlayerInput{
		GameID: game.ID,
		UserID: "stranger",
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestPutPlayer_UpsertAndList() {
	game := s.createGame()

	_, err := s.repo.PutPlayer(s.ctx, games.PutPlayerInput{
		Player: &entities.GamePlayer{
			GameID:   game.ID,
			UserID:   "user_2",
			Role:     entities.RolePlayer,
			IsActive: true,
			JoinedAt: 2000,
		},
	})
	s.Require().NoError(err)

	listOut, err := s.repo.ListPlayers(s.ctx, games.ListPlayersInput{GameID: game.ID})
	s.Require().NoError(err)
	s.Len(listOut.Players, 2)

	// Soft-remove and re-list: the row stays but flips inactive.
	_, err = s.repo.PutPlayer(s.ctx, games.PutPlayerInput{
		Player: &entities.GamePlayer{
			GameID:   game.ID,
			UserID:   "user_2",
			Role:     entities.RolePlayer,
			IsActive: false,
			JoinedAt: 2000,
		},
	})
	s.Require().NoError(err)

	playerOut, err := s.repo.GetPlayer(s.ctx, games.GetPlayerInput{
		GameID: game.ID,
		UserID: "user_2",
	})
	s.Require().NoError(err)
	s.False(playerOut.Player.IsActive)

	listOut, err = s.repo.ListPlayers(s.ctx, games.ListPlayersInput{GameID: game.ID})
	s.Require().NoError(err)
	s.Len(listOut.Players, 2)
}

func (s *RedisRepositoryTestSuite) TestScenes() {
	game := s.createGame()

	_, err := s.repo.CreateScene(s.ctx, games.CreateSceneInput{
		Scene: &entities.Scene{
			ID:        "scene_1",
			GameID:    game.ID,
			Name:      "Crypt Entrance",
			CreatedAt: 1500,
		},
	})
	s.Require().NoError(err)

	out, err := s.repo.GetScene(s.ctx, games.GetSceneInput{ID: "scene_1"})
	s.Require().NoError(err)
	s.Equal("Crypt Entrance", out.Scene.Name)
	s.Equal(game.ID, out.Scene.GameID)

	_, err = s.repo.GetScene(s.ctx, games.GetSceneInput{ID: "missing"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
