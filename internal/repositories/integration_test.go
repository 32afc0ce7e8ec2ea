package repositories

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"cmms-system/internal/entities"
	"cmms-system/pkg/database/postgresql"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
)

// RepositorySuite работает с настоящей PostgreSQL: CMMS_TEST_DATABASE_URL=postgres://.../cmms_test
type RepositorySuite struct {
	suite.Suite
	ctx  context.Context
	pool *pgxpool.Pool

	assets AssetRepositoryInterface
	parts  SparePartRepositoryInterface
	tx     TxManagerInterface
}

func TestRepositorySuite(t *testing.T) {
	if os.Getenv("CMMS_TEST_DATABASE_URL") == "" {
		t.Skip("CMMS_TEST_DATABASE_URL не задан")
	}
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	logger := zap.NewNop()

	pool, err := postgresql.ConnectDB(s.ctx, os.Getenv("CMMS_TEST_DATABASE_URL"), logger)
	s.Require().NoError(err)
	s.Require().NoError(postgresql.Migrate(s.ctx, pool, logger))
	s.pool = pool

	s.assets = NewAssetRepository(pool, logger)
	s.parts = NewSparePartRepository(pool, logger)
	s.tx = NewTxManager(pool)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE stock_movements, ticket_parts, tickets, preventive_plans, assets, spare_parts RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *RepositorySuite) newAsset(code string, parentID *uint64) *entities.Asset {
	created, err := s.assets.CreateAsset(s.ctx, &entities.Asset{
		Code:        code,
		Name:        "Актив " + code,
		ParentID:    parentID,
		Status:      entities.AssetStatusOperational,
		Criticality: "medium",
	})
	s.Require().NoError(err)
	return created
}

func (s *RepositorySuite) TestAsset_CreateFindAndParentMap() {
	line := s.newAsset("LINE-01", nil)
	pump := s.newAsset("PMP-01", &line.ID)

	found, err := s.assets.FindAsset(s.ctx, nil, pump.ID)
	s.Require().NoError(err)
	s.Equal("PMP-01", found.Code)
	s.Require().NotNil(found.ParentID)
	s.Equal(line.ID, *found.ParentID)

	parents, err := s.assets.GetParentMap(s.ctx)
	s.Require().NoError(err)
	s.Nil(parents[line.ID])
	s.Equal(line.ID, *parents[pump.ID])
}

func (s *RepositorySuite) TestAsset_DuplicateCodeConflict() {
	s.newAsset("CMP-01", nil)
	_, err := s.assets.CreateAsset(s.ctx, &entities.Asset{Code: "CMP-01", Name: "Дубль", Status: "operational", Criticality: "low"})
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *RepositorySuite) TestAsset_NotFound() {
	_, err := s.assets.FindAsset(s.ctx, nil, 999)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.ErrorIs(s.assets.DeleteAsset(s.ctx, 999), apperrors.ErrNotFound)
}

func (s *RepositorySuite) TestAsset_SearchAndPaging() {
	s.newAsset("PMP-01", nil)
	s.newAsset("PMP-02", nil)
	s.newAsset("CNV-01", nil)

	list, total, err := s.assets.GetAssets(s.ctx, types.Filter{Search: "PMP", Limit: 1, Page: 1})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(list, 1)
}

func (s *RepositorySuite) TestSparePart_AdjustQuantityNeverNegative() {
	part, err := s.parts.CreatePart(s.ctx, nil, &entities.SparePart{SKU: "BRG-6205", Name: "Подшипник", Quantity: 3, MinLevel: 1})
	s.Require().NoError(err)

	after, err := s.parts.AdjustQuantity(s.ctx, nil, part.ID, -2)
	s.Require().NoError(err)
	s.Equal(1, after)

	_, err = s.parts.AdjustQuantity(s.ctx, nil, part.ID, -2)
	s.ErrorIs(err, apperrors.ErrInsufficientStock)

	_, err = s.parts.AdjustQuantity(s.ctx, nil, 999, 1)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RepositorySuite) TestTxManager_RollsBackOnError() {
	part, err := s.parts.CreatePart(s.ctx, nil, &entities.SparePart{SKU: "SEAL-50", Name: "Уплотнение", Quantity: 5})
	s.Require().NoError(err)

	boom := errors.New("boom")
	err = s.tx.RunInTransaction(s.ctx, func(tx pgx.Tx) error {
		after, err := s.parts.AdjustQuantity(s.ctx, tx, part.ID, -5)
		if err != nil {
			return err
		}
		if err := s.parts.AddMovement(s.ctx, tx, &entities.StockMovement{PartID: part.ID, Delta: -5, QuantityAfter: after}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	reloaded, err := s.parts.FindPart(s.ctx, nil, part.ID)
	s.Require().NoError(err)
	s.Equal(5, reloaded.Quantity)

	_, total, err := s.parts.GetMovements(s.ctx, part.ID, types.Filter{Limit: 10, Page: 1})
	s.Require().NoError(err)
	s.Zero(total)
}
