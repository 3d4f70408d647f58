package actor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/orchestrators/actor"
	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
	"github.com/greyhelm/vtt-api/internal/pkg/clock"
	"github.com/greyhelm/vtt-api/internal/pkg/dice"
	"github.com/greyhelm/vtt-api/internal/pkg/idgen"
	realtimemock "github.com/greyhelm/vtt-api/internal/realtime/mock"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/repositories/conditions"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
	"github.com/greyhelm/vtt-api/internal/testutils"
)

var testNow = time.Unix(1700000000, 0)

type OrchestratorTestSuite struct {
	suite.Suite
	gameRepo      games.Repository
	actorRepo     actors.Repository
	conditionRepo conditions.Repository
	logRepo       gamelogs.Repository
	gate          combat.Service
	broadcaster   *realtimemock.MockBroadcaster
	ctrl          *gomock.Controller
	cleanup       func()
	ctx           context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())

	var err error
	s.gameRepo, err = games.NewRedis(&games.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.actorRepo, err = actors.NewRedis(&actors.RedisConfig{Client: client})
	s.Require().NoError(err)
	combatRepo, err := combats.NewRedis(&combats.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.conditionRepo, err = conditions.NewRedis(&conditions.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.logRepo, err = gamelogs.NewRedis(&gamelogs.RedisConfig{Client: client})
	s.Require().NoError(err)

	s.broadcaster = realtimemock.NewMockBroadcaster(s.ctrl)
	s.broadcaster.EXPECT().EmitToRoom(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	s.gate, err = combat.NewOrchestrator(&combat.Config{
		GameRepo:      s.gameRepo,
		ActorRepo:     s.actorRepo,
		CombatRepo:    combatRepo,
		ConditionRepo: s.conditionRepo,
		LogRepo:       s.logRepo,
		Broadcaster:   s.broadcaster,
		IDGenerator:   idgen.NewSequential("combat_"),
		Clock:         clock.NewFixed(testNow),
	})
	s.Require().NoError(err)

	s.seedGame()
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
	s.cleanup()
}

// newService builds the orchestrator under test around a scripted roller.
func (s *OrchestratorTestSuite) newService(roller dice.Roller) actor.Service {
	svc, err := actor.NewOrchestrator(&actor.Config{
		GameRepo:      s.gameRepo,
		ActorRepo:     s.actorRepo,
		ConditionRepo: s.conditionRepo,
		LogRepo:       s.logRepo,
		Gate:          s.gate,
		Broadcaster:   s.broadcaster,
		Roller:        roller,
		IDGenerator:   idgen.NewSequential("id_"),
		Clock:         clock.NewFixed(testNow),
	})
	s.Require().NoError(err)
	return svc
}

func (s *OrchestratorTestSuite) seedGame() {
	_, err := s.gameRepo.CreateGame(s.ctx, games.CreateGameInput{
		Game: &entities.Game{
			ID:         "game_1",
			Name:       "Test Game",
			Status:     entities.GameStatusActive,
			MaxPlayers: 6,
			CreatedBy:  "dm",
		},
		Creator: &entities.GamePlayer{
			GameID:   "game_1",
			UserID:   "dm",
			Role:     entities.RoleDM,
			IsActive: true,
		},
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) seedActor(a *entities.ActorInGame) {
	if a.GameID == "" {
		a.GameID = "game_1"
	}
	_, err := s.actorRepo.Create(s.ctx, actors.CreateInput{Actor: a})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestCreateActor() {
	svc := s.newService(dice.NewSequence(1))

	out, err := svc.CreateActor(s.ctx, &actor.CreateActorInput{
		GameID:          "game_1",
		UserID:          "dm",
		BaseCharacterID: "char_1",
		MaxHP:           27,
		ArmorClass:      15,
		Constitution:    14,
		SpellSlots:      []actor.SlotInit{{Level: 1, SlotsMax: 4}},
	})
	s.Require().NoError(err)

	s.Equal(int32(27), out.Actor.CurrentHP)
	s.Equal(int32(27), out.Actor.MaxHPOverride)
	s.True(out.Actor.IsConscious)
	s.True(out.Actor.IsStable)

	slotOut, err := s.actorRepo.GetSpellSlot(s.ctx, actors.GetSpellSlotInput{
		ActorInGameID: out.Actor.ID,
		Level:         1,
	})
	s.Require().NoError(err)
	s.Equal(int32(4), slotOut.Slot.SlotsMax)
	s.Equal(int32(0), slotOut.Slot.SlotsUsed)
}

func (s *OrchestratorTestSuite) TestCreateActor_BothSourcesRejected() {
	svc := s.newService(dice.NewSequence(1))

	_, err := svc.CreateActor(s.ctx, &actor.CreateActorInput{
		GameID:          "game_1",
		UserID:          "dm",
		BaseCharacterID: "char_1",
		BaseMonsterID:   "mon_1",
		MaxHP:           10,
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestCreateActor_RequiresDM() {
	svc := s.newService(dice.NewSequence(1))

	_, err := svc.CreateActor(s.ctx, &actor.CreateActorInput{
		GameID:          "game_1",
		UserID:          "stranger",
		BaseCharacterID: "char_1",
		MaxHP:           10,
	})
	s.Require().Error(err)
	s.True(errors.IsPermissionDenied(err))
}

func (s *OrchestratorTestSuite) TestUpdateHP_TempHPAbsorbsFirst() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{
		ID: "actor_1", CurrentHP: 20, TempHP: 5, MaxHPOverride: 20,
		IsConscious: true, IsStable: true,
	})

	out, err := svc.UpdateHP(s.ctx, &actor.UpdateHPInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
		Delta:         -8,
	})
	s.Require().NoError(err)

	s.Equal(int32(17), out.Actor.CurrentHP)
	s.Equal(int32(0), out.Actor.TempHP)
	s.Equal(int32(5), out.Change.Absorbed)
	s.True(out.Actor.IsConscious)
}

func (s *OrchestratorTestSuite) TestUpdateHP_DropToZeroKnocksUnconscious() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{
		ID: "actor_1", CurrentHP: 5, MaxHPOverride: 20,
		IsConscious: true, IsStable: true,
	})

	out, err := svc.UpdateHP(s.ctx, &actor.UpdateHPInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
		Delta:         -12,
	})
	s.Require().NoError(err)

	s.Equal(int32(0), out.Actor.CurrentHP)
	s.False(out.Actor.IsConscious)
	s.False(out.Actor.IsStable)
	s.True(out.Change.WentUnconscious)
}

func (s *OrchestratorTestSuite) TestUpdateHP_DamageWhileDownAddsDeathSaveFailure() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{
		ID: "actor_1", CurrentHP: 0, MaxHPOverride: 20,
	})

	out, err := svc.UpdateHP(s.ctx, &actor.UpdateHPInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
		Delta:         -3,
	})
	s.Require().NoError(err)

	s.Equal(int32(0), out.Actor.CurrentHP)
	s.Equal(int32(1), out.Actor.DeathSavesFail)
	s.True(out.Change.DeathSaveFailAdded)
}

func (s *OrchestratorTestSuite) TestUpdateHP_HealingResetsDeathSaves() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{
		ID: "actor_1", CurrentHP: 0, MaxHPOverride: 20,
		DeathSavesSuccess: 1, DeathSavesFail: 2,
	})

	out, err := svc.UpdateHP(s.ctx, &actor.UpdateHPInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
		Delta:         5,
	})
	s.Require().NoError(err)

	s.Equal(int32(5), out.Actor.CurrentHP)
	s.True(out.Actor.IsConscious)
	s.True(out.Actor.IsStable)
	s.Equal(int32(0), out.Actor.DeathSavesSuccess)
	s.Equal(int32(0), out.Actor.DeathSavesFail)
	s.True(out.Change.Recovered)
}

func (s *OrchestratorTestSuite) TestUpdateHP_ConcentrationBroken() {
	// DC is max(10, 22/2) = 11; a natural 5 with +0 CON fails.
	svc := s.newService(dice.NewSequence(5))
	concentrating := &entities.ActorInGame{
		ID: "actor_1", CurrentHP: 30, MaxHPOverride: 30, Constitution: 10,
		IsConscious: true, IsStable: true,
	}
	concentrating.SetConcentration(entities.Concentration{SpellID: "spell_bless"})
	s.seedActor(concentrating)

	out, err := svc.UpdateHP(s.ctx, &actor.UpdateHPInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
		Delta:         -22,
	})
	s.Require().NoError(err)

	s.True(out.ConcentrationBroken)
	s.Nil(out.Actor.Concentration())
}

func (s *OrchestratorTestSuite) TestUpdateHP_ConcentrationHeld() {
	svc := s.newService(dice.NewSequence(20))
	concentrating := &entities.ActorInGame{
		ID: "actor_1", CurrentHP: 30, MaxHPOverride: 30, Constitution: 10,
		IsConscious: true, IsStable: true,
	}
	concentrating.SetConcentration(entities.Concentration{SpellID: "spell_bless"})
	s.seedActor(concentrating)

	out, err := svc.UpdateHP(s.ctx, &actor.UpdateHPInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
		Delta:         -22,
	})
	s.Require().NoError(err)

	s.False(out.ConcentrationBroken)
	s.Require().NotNil(out.Actor.Concentration())
	s.Equal("spell_bless", out.Actor.Concentration().SpellID)
}

func (s *OrchestratorTestSuite) TestUpdateHP_ActorMustBeInGame() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{
		ID: "actor_other", GameID: "game_2", CurrentHP: 10,
	})

	_, err := svc.UpdateHP(s.ctx, &actor.UpdateHPInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_other",
		Delta:         -1,
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestRollDeathSave_NotDying() {
	svc := s.newService(dice.NewSequence(10))
	s.seedActor(&entities.ActorInGame{
		ID: "actor_1", CurrentHP: 10, IsConscious: true, IsStable: true,
	})

	_, err := svc.RollDeathSave(s.ctx, &actor.RollDeathSaveInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestRollDeathSave_Natural20Stabilizes() {
	svc := s.newService(dice.NewSequence(20))
	s.seedActor(&entities.ActorInGame{ID: "actor_1", CurrentHP: 0})

	out, err := svc.RollDeathSave(s.ctx, &actor.RollDeathSaveInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
	})
	s.Require().NoError(err)

	s.True(out.Outcome.IsStable)
	s.Equal(int32(3), out.Outcome.Successes)
	s.True(out.Actor.IsStable)
}

func (s *OrchestratorTestSuite) TestRollDeathSave_Natural1CountsTwice() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{ID: "actor_1", CurrentHP: 0, DeathSavesFail: 1})

	out, err := svc.RollDeathSave(s.ctx, &actor.RollDeathSaveInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
	})
	s.Require().NoError(err)

	s.Equal(int32(3), out.Outcome.Failures)
	s.True(out.Outcome.IsDead)
	s.True(out.Actor.IsDead())
}

func (s *OrchestratorTestSuite) TestRollDeathSave_TenOrBetterSucceeds() {
	svc := s.newService(dice.NewSequence(10))
	s.seedActor(&entities.ActorInGame{ID: "actor_1", CurrentHP: 0})

	out, err := svc.RollDeathSave(s.ctx, &actor.RollDeathSaveInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
	})
	s.Require().NoError(err)

	s.Equal(int32(1), out.Outcome.Successes)
	s.False(out.Outcome.IsStable)
	s.False(out.Actor.IsStable)
}

func (s *OrchestratorTestSuite) TestRollDeathSave_BelowTenFails() {
	svc := s.newService(dice.NewSequence(7))
	s.seedActor(&entities.ActorInGame{ID: "actor_1", CurrentHP: 0})

	out, err := svc.RollDeathSave(s.ctx, &actor.RollDeathSaveInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
	})
	s.Require().NoError(err)

	s.Equal(int32(1), out.Outcome.Failures)
	s.False(out.Outcome.IsDead)
}

func (s *OrchestratorTestSuite) TestApplyCondition_ManualExpiryUsesWallClock() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{ID: "actor_1", CurrentHP: 10, IsConscious: true})

	rounds := int32(3)
	out, err := svc.ApplyCondition(s.ctx, &actor.ApplyConditionInput{
		GameID:         "game_1",
		UserID:         "dm",
		ActorInGameID:  "actor_1",
		ConditionID:    "poisoned",
		DurationRounds: &rounds,
	})
	s.Require().NoError(err)

	// 3 rounds at 6 seconds each.
	s.Equal(testNow.Add(18*time.Second).UnixMilli(), out.Condition.ExpiresAt)
	s.Nil(out.Condition.ExpiresOnRound)
}

func (s *OrchestratorTestSuite) TestApplyCondition_Indefinite() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{ID: "actor_1", CurrentHP: 10, IsConscious: true})

	out, err := svc.ApplyCondition(s.ctx, &actor.ApplyConditionInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
		ConditionID:   "cursed",
	})
	s.Require().NoError(err)

	s.Zero(out.Condition.ExpiresAt)
	s.Nil(out.Condition.ExpiresOnRound)
}

func (s *OrchestratorTestSuite) TestRemoveCondition() {
	svc := s.newService(dice.NewSequence(1))
	s.seedActor(&entities.ActorInGame{ID: "actor_1", CurrentHP: 10, IsConscious: true})

	applied, err := svc.ApplyCondition(s.ctx, &actor.ApplyConditionInput{
		GameID:        "game_1",
		UserID:        "dm",
		ActorInGameID: "actor_1",
		ConditionID:   "poisoned",
	})
	s.Require().NoError(err)

	_, err = svc.RemoveCondition(s.ctx, &actor.RemoveConditionInput{
		GameID:           "game_1",
		UserID:           "dm",
		ActorConditionID: applied.Condition.ID,
	})
	s.Require().NoError(err)

	listOut, err := svc.ListConditions(s.ctx, &actor.ListConditionsInput{
		GameID:        "game_1",
		ActorInGameID: "actor_1",
	})
	s.Require().NoError(err)
	s.Empty(listOut.Conditions)
}

func (s *OrchestratorTestSuite) TestRemoveCondition_RequiresDM() {
	svc := s.newService(dice.NewSequence(1))

	_, err := svc.RemoveCondition(s.ctx, &actor.RemoveConditionInput{
		GameID:           "game_1",
		UserID:           "stranger",
		ActorConditionID: "cond_1",
	})
	s.Require().Error(err)
	s.True(errors.IsPermissionDenied(err))
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
