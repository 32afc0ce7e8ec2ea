package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"cmms-system/internal/entities"
	"cmms-system/internal/infrastructure/bd"
	apperrors "cmms-system/pkg/errors"
	"cmms-system/pkg/types"
)

const assetTable = "assets"

var assetColumns = []string{
	"a.id", "a.code", "a.name", "a.category", "a.location", "a.manufacturer", "a.model", "a.serial_number",
	"a.parent_id", "a.status", "a.criticality", "a.install_date", "a.acquisition_cost", "a.description",
	"a.created_at", "a.updated_at",
}

// ЕДИНАЯ КАРТА ПОЛЕЙ (фильтр + сортировка)
var assetMap = map[string]string{
	"id":               "a.id",
	"code":             "a.code",
	"name":             "a.name",
	"category":         "a.category",
	"location":         "a.location",
	"status":           "a.status",
	"criticality":      "a.criticality",
	"parent_id":        "a.parent_id",
	"install_date":     "a.install_date",
	"acquisition_cost": "a.acquisition_cost",
	"created_at":       "a.created_at",
	"updated_at":       "a.updated_at",
}

var assetSearchColumns = []string{"a.code", "a.name", "a.location"}

type AssetRepositoryInterface interface {
	GetAssets(ctx context.Context, filter types.Filter) ([]entities.Asset, uint64, error)
	GetAllAssets(ctx context.Context) ([]entities.Asset, error)
	FindAsset(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Asset, error)
	CreateAsset(ctx context.Context, asset *entities.Asset) (*entities.Asset, error)
	UpdateAsset(ctx context.Context, asset *entities.Asset) (*entities.Asset, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string) error
	DeleteAsset(ctx context.Context, id uint64) error
	GetParentMap(ctx context.Context) (map[uint64]*uint64, error)
}

type AssetRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssetRepository(storage *pgxpool.Pool, logger *zap.Logger) AssetRepositoryInterface {
	return &AssetRepository{storage: storage, logger: logger}
}

func scanAsset(row pgx.Row) (*entities.Asset, error) {
	var a entities.Asset
	err := row.Scan(
		&a.ID, &a.Code, &a.Name, &a.Category, &a.Location, &a.Manufacturer, &a.Model, &a.SerialNumber,
		&a.ParentID, &a.Status, &a.Criticality, &a.InstallDate, &a.AcquisitionCost, &a.Description,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования asset: %w", err)
	}
	return &a, nil
}

func collectAssets(rows pgx.Rows) ([]entities.Asset, error) {
	defer rows.Close()
	assets := make([]entities.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

func (r *AssetRepository) GetAssets(ctx context.Context, filter types.Filter) ([]entities.Asset, uint64, error) {
	countBuilder := bd.Psql.Select("COUNT(a.id)").From("assets AS a")
	countBuilder = bd.ApplySearch(countBuilder, filter.Search, assetSearchColumns...)
	countBuilder = bd.ApplyListParams(countBuilder, bd.CountFilter(filter), assetMap)

	var total uint64
	sqlCount, argsCount, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Asset{}, 0, nil
	}

	builder := bd.Psql.Select(assetColumns...).From("assets AS a")
	builder = bd.ApplySearch(builder, filter.Search, assetSearchColumns...)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("a.code")
	}
	builder = bd.ApplyListParams(builder, filter, assetMap)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	assets, err := collectAssets(rows)
	return assets, total, err
}

// GetAllAssets - без пагинации, для дерева и цифрового двойника.
func (r *AssetRepository) GetAllAssets(ctx context.Context) ([]entities.Asset, error) {
	query, args, err := bd.Psql.Select(assetColumns...).From("assets AS a").OrderBy("a.code").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAssets(rows)
}

func (r *AssetRepository) FindAsset(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Asset, error) {
	query, args, err := bd.Psql.Select(assetColumns...).From("assets AS a").Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanAsset(pick(r.storage, tx).QueryRow(ctx, query, args...))
}

func mapAssetWriteErr(err error, code string) error {
	switch pgErrCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("актив с кодом %s уже существует: %w", code, apperrors.ErrConflict)
	case pgForeignKeyViolation:
		return fmt.Errorf("родительский актив не найден: %w", apperrors.ErrBadRequest)
	case pgCheckViolation:
		return apperrors.ErrAssetCycle
	}
	return err
}

func (r *AssetRepository) CreateAsset(ctx context.Context, a *entities.Asset) (*entities.Asset, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (code, name, category, location, manufacturer, model, serial_number, parent_id,
		                status, criticality, install_date, acquisition_cost, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, code, name, category, location, manufacturer, model, serial_number, parent_id,
		          status, criticality, install_date, acquisition_cost, description, created_at, updated_at`, assetTable)
	created, err := scanAsset(r.storage.QueryRow(ctx, query,
		a.Code, a.Name, a.Category, a.Location, a.Manufacturer, a.Model, a.SerialNumber, a.ParentID,
		a.Status, a.Criticality, a.InstallDate, a.AcquisitionCost, a.Description,
	))
	if err != nil {
		return nil, mapAssetWriteErr(err, a.Code)
	}
	return created, nil
}

func (r *AssetRepository) UpdateAsset(ctx context.Context, a *entities.Asset) (*entities.Asset, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET code = $1, name = $2, category = $3, location = $4, manufacturer = $5, model = $6,
		    serial_number = $7, parent_id = $8, status = $9, criticality = $10, install_date = $11,
		    acquisition_cost = $12, description = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING id, code, name, category, location, manufacturer, model, serial_number, parent_id,
		          status, criticality, install_date, acquisition_cost, description, created_at, updated_at`, assetTable)
	updated, err := scanAsset(r.storage.QueryRow(ctx, query,
		a.Code, a.Name, a.Category, a.Location, a.Manufacturer, a.Model, a.SerialNumber, a.ParentID,
		a.Status, a.Criticality, a.InstallDate, a.AcquisitionCost, a.Description, a.ID,
	))
	if err != nil {
		return nil, mapAssetWriteErr(err, a.Code)
	}
	return updated, nil
}

func (r *AssetRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string) error {
	result, err := pick(r.storage, tx).Exec(ctx,
		"UPDATE assets SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса актива: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteAsset: дочерние активы отвязываются через ON DELETE SET NULL,
// ссылки из заявок и планов (RESTRICT) дают ErrAssetInUse.
func (r *AssetRepository) DeleteAsset(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, "DELETE FROM assets WHERE id = $1", id)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return apperrors.ErrAssetInUse
		}
		return fmt.Errorf("ошибка удаления asset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetParentMap - id -> parent_id по всем активам, для проверки циклов.
func (r *AssetRepository) GetParentMap(ctx context.Context) (map[uint64]*uint64, error) {
	rows, err := r.storage.Query(ctx, "SELECT id, parent_id FROM assets")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parents := make(map[uint64]*uint64)
	for rows.Next() {
		var id uint64
		var parent *uint64
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, err
		}
		parents[id] = parent
	}
	return parents, rows.Err()
}
