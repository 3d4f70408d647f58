package attack_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/greyhelm/vtt-api/internal/entities"
	"github.com/greyhelm/vtt-api/internal/errors"
	"github.com/greyhelm/vtt-api/internal/orchestrators/actor"
	"github.com/greyhelm/vtt-api/internal/orchestrators/attack"
	"github.com/greyhelm/vtt-api/internal/orchestrators/combat"
	"github.com/greyhelm/vtt-api/internal/pkg/clock"
	"github.com/greyhelm/vtt-api/internal/pkg/dice"
	"github.com/greyhelm/vtt-api/internal/pkg/idgen"
	realtimemock "github.com/greyhelm/vtt-api/internal/realtime/mock"
	"github.com/greyhelm/vtt-api/internal/repositories/actors"
	"github.com/greyhelm/vtt-api/internal/repositories/catalog"
	"github.com/greyhelm/vtt-api/internal/repositories/combats"
	"github.com/greyhelm/vtt-api/internal/repositories/conditions"
	"github.com/greyhelm/vtt-api/internal/repositories/gamelogs"
	"github.com/greyhelm/vtt-api/internal/repositories/games"
	"github.com/greyhelm/vtt-api/internal/testutils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	gameRepo      games.Repository
	actorRepo     actors.Repository
	combatRepo    combats.Repository
	conditionRepo conditions.Repository
	catalogRepo   catalog.Repository
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
	s.combatRepo, err = combats.NewRedis(&combats.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.conditionRepo, err = conditions.NewRedis(&conditions.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.catalogRepo, err = catalog.NewRedis(&catalog.RedisConfig{Client: client})
	s.Require().NoError(err)
	s.logRepo, err = gamelogs.NewRedis(&gamelogs.RedisConfig{Client: client})
	s.Require().NoError(err)

	s.broadcaster = realtimemock.NewMockBroadcaster(s.ctrl)
	s.broadcaster.EXPECT().EmitToRoom(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	s.gate, err = combat.NewOrchestrator(&combat.Config{
		GameRepo:      s.gameRepo,
		ActorRepo:     s.actorRepo,
		CombatRepo:    s.combatRepo,
		ConditionRepo: s.conditionRepo,
		LogRepo:       s.logRepo,
		Broadcaster:   s.broadcaster,
		IDGenerator:   idgen.NewSequential("combat_"),
		Clock:         clock.NewFixed(time.Unix(1700000000, 0)),
	})
	s.Require().NoError(err)

	s.seedGame()
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
	s.cleanup()
}

// newService builds the attack orchestrator around a scripted roller. The
// actor service shares the roller so concentration checks draw from the
// same sequence.
func (s *OrchestratorTestSuite) newService(roller dice.Roller) attack.Service {
	actorSvc, err := actor.NewOrchestrator(&actor.Config{
		GameRepo:      s.gameRepo,
		ActorRepo:     s.actorRepo,
		ConditionRepo: s.conditionRepo,
		LogRepo:       s.logRepo,
		Gate:          s.gate,
		Broadcaster:   s.broadcaster,
		Roller:        roller,
		IDGenerator:   idgen.NewSequential("actor_"),
		Clock:         clock.NewFixed(time.Unix(1700000000, 0)),
	})
	s.Require().NoError(err)

	svc, err := attack.NewOrchestrator(&attack.Config{
		CatalogRepo: s.catalogRepo,
		CombatRepo:  s.combatRepo,
		LogRepo:     s.logRepo,
		ActorSvc:    actorSvc,
		Gate:        s.gate,
		Broadcaster: s.broadcaster,
		Roller:      roller,
		IDGenerator: idgen.NewSequential("id_"),
		Clock:       clock.NewFixed(time.Unix(1700000000, 0)),
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

	_, err = s.actorRepo.Create(s.ctx, actors.CreateInput{
		Actor: &entities.ActorInGame{
			ID: "attacker", GameID: "game_1", BaseCharacterID: "char_1",
			CurrentHP: 20, MaxHPOverride: 20, ArmorClass: 14,
			IsConscious: true, IsStable: true,
		},
	})
	s.Require().NoError(err)
	_, err = s.actorRepo.Create(s.ctx, actors.CreateInput{
		Actor: &entities.ActorInGame{
			ID: "target", GameID: "game_1", BaseMonsterID: "mon_1",
			CurrentHP: 20, MaxHPOverride: 20, ArmorClass: 15, Constitution: 14,
			IsConscious: true, IsStable: true,
		},
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) seedAttack(a *entities.Attack) {
	_, err := s.catalogRepo.PutAttack(s.ctx, catalog.PutAttackInput{Attack: a})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) resolve(svc attack.Service, advantage, disadvantage bool) (*attack.ResolveAttackOutput, error) {
	return svc.ResolveAttack(s.ctx, &attack.ResolveAttackInput{
		GameID:       "game_1",
		UserID:       "dm",
		AttackerID:   "attacker",
		TargetID:     "target",
		AttackID:     "atk_sword",
		Advantage:    advantage,
		Disadvantage: disadvantage,
	})
}

func (s *OrchestratorTestSuite) TestResolveAttack_Miss() {
	s.seedAttack(&entities.Attack{ID: "atk_sword", Name: "Sword", DamageFormula: "1d8+2"})
	svc := s.newService(dice.NewSequence(10))

	out, err := s.resolve(svc, false, false)
	s.Require().NoError(err)

	s.False(out.Hit)
	s.Zero(out.Damage)
	s.Equal(int32(20), out.Target.CurrentHP)
}

func (s *OrchestratorTestSuite) TestResolveAttack_Hit() {
	s.seedAttack(&entities.Attack{ID: "atk_sword", Name: "Sword", DamageFormula: "1d8+2"})
	svc := s.newService(dice.NewSequence(18, 6))

	out, err := s.resolve(svc, false, false)
	s.Require().NoError(err)

	s.True(out.Hit)
	s.False(out.Critical)
	s.Equal(int32(8), out.Damage)
	s.Equal(int32(12), out.Target.CurrentHP)
}

func (s *OrchestratorTestSuite) TestResolveAttack_CriticalDoublesDamage() {
	s.seedAttack(&entities.Attack{ID: "atk_sword", Name: "Sword", DamageFormula: "1d8+2"})
	svc := s.newService(dice.NewSequence(20, 6))

	out, err := s.resolve(svc, false, false)
	s.Require().NoError(err)

	s.True(out.Hit)
	s.True(out.Critical)
	s.Equal(int32(16), out.Damage)
	s.Equal(int32(4), out.Target.CurrentHP)
}

func (s *OrchestratorTestSuite) TestResolveAttack_AdvantageKeepsHigher() {
	s.seedAttack(&entities.Attack{ID: "atk_sword", Name: "Sword", DamageFormula: "1d8+2"})
	svc := s.newService(dice.NewSequence(3, 18, 6))

	out, err := s.resolve(svc, true, false)
	s.Require().NoError(err)

	s.True(out.Hit)
	s.Equal(18, out.Roll.Natural)
	s.Equal([]int{3, 18}, out.Roll.Rolls)
}

func (s *OrchestratorTestSuite) TestResolveAttack_ConditionOnHit() {
	duration := int32(2)
	s.seedAttack(&entities.Attack{
		ID: "atk_sword", Name: "Venom Blade", DamageFormula: "1d8+2",
		Conditions: []entities.ConditionEffect{
			{ConditionID: "poisoned", On: entities.TriggerHit, DurationRounds: &duration},
		},
	})
	svc := s.newService(dice.NewSequence(18, 6))

	out, err := s.resolve(svc, false, false)
	s.Require().NoError(err)
	s.Equal([]string{"poisoned"}, out.ConditionsApplied)

	listOut, err := s.conditionRepo.ListForActor(s.ctx, conditions.ListForActorInput{
		ActorInGameID: "target",
	})
	s.Require().NoError(err)
	s.Require().Len(listOut.Conditions, 1)
	s.Equal("poisoned", listOut.Conditions[0].ConditionID)
}

func (s *OrchestratorTestSuite) TestResolveAttack_ConditionNotAppliedOnMiss() {
	s.seedAttack(&entities.Attack{
		ID: "atk_sword", Name: "Venom Blade", DamageFormula: "1d8+2",
		Conditions: []entities.ConditionEffect{
			{ConditionID: "poisoned", On: entities.TriggerHit},
		},
	})
	svc := s.newService(dice.NewSequence(5))

	out, err := s.resolve(svc, false, false)
	s.Require().NoError(err)
	s.Empty(out.ConditionsApplied)
}

func (s *OrchestratorTestSuite) TestResolveAttack_ConditionSaveNegates() {
	s.seedAttack(&entities.Attack{
		ID: "atk_sword", Name: "Venom Blade", DamageFormula: "1d8+2",
		Conditions: []entities.ConditionEffect{
			{
				ConditionID:  "poisoned",
				On:           entities.TriggerHit,
				RequiresSave: &entities.SaveRequirement{Ability: "con", DC: 12},
			},
		},
	})
	// Target CON 14 gives +2: a natural 12 totals 14 and saves.
	svc := s.newService(dice.NewSequence(18, 6, 12))

	out, err := s.resolve(svc, false, false)
	s.Require().NoError(err)
	s.True(out.Hit)
	s.Empty(out.ConditionsApplied)
}

func (s *OrchestratorTestSuite) TestResolveAttack_UnknownAttack() {
	svc := s.newService(dice.NewSequence(10))

	_, err := s.resolve(svc, false, false)
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestResolveAttack_NonMemberDenied() {
	s.seedAttack(&entities.Attack{ID: "atk_sword", Name: "Sword", DamageFormula: "1d8+2"})
	svc := s.newService(dice.NewSequence(10))

	_, err := svc.ResolveAttack(s.ctx, &attack.ResolveAttackInput{
		GameID:     "game_1",
		UserID:     "stranger",
		AttackerID: "attacker",
		TargetID:   "target",
		AttackID:   "atk_sword",
	})
	s.Require().Error(err)
	s.True(errors.IsPermissionDenied(err))
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
